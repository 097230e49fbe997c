package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// StaffInput carries the fields shared by every staff upsert. A nil ID
// creates a new record; an existing id updates it in place.
type StaffInput struct {
	ID            *uuid.UUID
	Name          string
	Salary        float64
	AvailableDate time.Time
	Skills        []string
	Certificates  []string
}

// UnderSelectionInput extends StaffInput with the hiring window.
type UnderSelectionInput struct {
	StaffInput
	SelectionStart time.Time
	SelectionEnd   time.Time
}

// DirectoryService maintains the staff and client rosters consumed by the
// allocator. Staff records share their id with the backing employee, so
// one upsert writes both rows.
type DirectoryService interface {
	ListPMs(ctx context.Context) ([]models.PM, error)
	ListDevelopers(ctx context.Context) ([]models.Developer, error)
	ListUnderSelection(ctx context.Context) ([]models.UnderSelectionDeveloper, error)
	ListClients(ctx context.Context) ([]models.Client, error)

	UpsertPM(ctx context.Context, input StaffInput) (*models.PM, error)
	UpsertDeveloper(ctx context.Context, input StaffInput) (*models.Developer, error)
	UpsertUnderSelection(ctx context.Context, input UnderSelectionInput) (*models.UnderSelectionDeveloper, error)
}

type directoryService struct {
	employees      repositories.EmployeeRepository
	pms            repositories.PMRepository
	developers     repositories.DeveloperRepository
	underSelection repositories.UnderSelectionRepository
	clients        repositories.ClientRepository
	logger         *zap.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(
	employees repositories.EmployeeRepository,
	pms repositories.PMRepository,
	developers repositories.DeveloperRepository,
	underSelection repositories.UnderSelectionRepository,
	clients repositories.ClientRepository,
	logger *zap.Logger,
) DirectoryService {
	return &directoryService{
		employees:      employees,
		pms:            pms,
		developers:     developers,
		underSelection: underSelection,
		clients:        clients,
		logger:         logger.Named("directory-service"),
	}
}

var _ DirectoryService = (*directoryService)(nil)

func (s *directoryService) ListPMs(ctx context.Context) ([]models.PM, error) {
	return s.pms.List(ctx)
}

func (s *directoryService) ListDevelopers(ctx context.Context) ([]models.Developer, error) {
	return s.developers.List(ctx)
}

func (s *directoryService) ListUnderSelection(ctx context.Context) ([]models.UnderSelectionDeveloper, error) {
	return s.underSelection.List(ctx)
}

func (s *directoryService) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.clients.List(ctx)
}

// upsertEmployee writes the person record shared by all staff roles and
// returns it with an id allocated when the input had none.
func (s *directoryService) upsertEmployee(ctx context.Context, input StaffInput) (*models.Employee, error) {
	employee := &models.Employee{
		Name:          input.Name,
		Salary:        input.Salary,
		AvailableDate: input.AvailableDate,
	}
	if input.ID != nil {
		employee.ID = *input.ID
	} else {
		employee.ID = uuid.New()
	}
	if err := s.employees.Upsert(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *directoryService) UpsertPM(ctx context.Context, input StaffInput) (*models.PM, error) {
	employee, err := s.upsertEmployee(ctx, input)
	if err != nil {
		return nil, err
	}
	pm := &models.PM{
		ID:           employee.ID,
		EmployeeID:   employee.ID,
		Employee:     employee,
		Skills:       input.Skills,
		Certificates: input.Certificates,
	}
	if err := s.pms.Upsert(ctx, pm); err != nil {
		return nil, err
	}
	s.logger.Debug("PM upserted", zap.String("id", pm.ID.String()))
	return pm, nil
}

func (s *directoryService) UpsertDeveloper(ctx context.Context, input StaffInput) (*models.Developer, error) {
	employee, err := s.upsertEmployee(ctx, input)
	if err != nil {
		return nil, err
	}
	dev := &models.Developer{
		ID:           employee.ID,
		EmployeeID:   employee.ID,
		Employee:     employee,
		Skills:       input.Skills,
		Certificates: input.Certificates,
	}
	if err := s.developers.Upsert(ctx, dev); err != nil {
		return nil, err
	}
	s.logger.Debug("Developer upserted", zap.String("id", dev.ID.String()))
	return dev, nil
}

func (s *directoryService) UpsertUnderSelection(ctx context.Context, input UnderSelectionInput) (*models.UnderSelectionDeveloper, error) {
	employee, err := s.upsertEmployee(ctx, input.StaffInput)
	if err != nil {
		return nil, err
	}
	dev := &models.UnderSelectionDeveloper{
		ID:             employee.ID,
		EmployeeID:     employee.ID,
		Employee:       employee,
		SelectionStart: input.SelectionStart,
		SelectionEnd:   input.SelectionEnd,
	}
	if err := s.underSelection.Upsert(ctx, dev); err != nil {
		return nil, err
	}
	s.logger.Debug("Under-selection developer upserted", zap.String("id", dev.ID.String()))
	return dev, nil
}
