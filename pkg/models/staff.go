package models

import (
	"time"

	"github.com/google/uuid"
)

// PM is a Project Manager role record. It wraps exactly one Employee and
// carries at most one active project reference; a nil ProjectID means the
// PM is on the bench.
type PM struct {
	ID           uuid.UUID  `json:"id"`
	EmployeeID   uuid.UUID  `json:"employee_id"`
	Employee     *Employee  `json:"employee,omitempty"`
	Skills       []string   `json:"skills"`
	Certificates []string   `json:"certificates"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
}

// Developer is an onboarded developer role record, 1:1 with an Employee.
type Developer struct {
	ID           uuid.UUID  `json:"id"`
	EmployeeID   uuid.UUID  `json:"employee_id"`
	Employee     *Employee  `json:"employee,omitempty"`
	Skills       []string   `json:"skills"`
	Certificates []string   `json:"certificates"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
}

// UnderSelectionDeveloper is a hired-but-not-yet-onboarded developer. The
// selection window records the hiring process duration and feeds the IDNE
// indicator.
type UnderSelectionDeveloper struct {
	ID             uuid.UUID  `json:"id"`
	EmployeeID     uuid.UUID  `json:"employee_id"`
	Employee       *Employee  `json:"employee,omitempty"`
	SelectionStart time.Time  `json:"selection_start"`
	SelectionEnd   time.Time  `json:"selection_end"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
}

// Roster is a project's currently assigned staff with employees resolved.
type Roster struct {
	PM             *PM
	Developers     []Developer
	UnderSelection []UnderSelectionDeveloper
}
