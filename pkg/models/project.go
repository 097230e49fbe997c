package models

import (
	"time"

	"github.com/google/uuid"
)

// State is a project's lifecycle state.
type State string

const (
	StateOpen             State = "OPEN"
	StateTeamAssigned     State = "TEAM_ASSIGNED"
	StateSentToClient     State = "SENT_TO_CLIENT"
	StateRejectedByClient State = "REJECTED_BY_CLIENT"
	StateAccepted         State = "ACCEPTED"
	StateCancelled        State = "CANCELLED"
)

// transitions is the single source of truth for the lifecycle state
// machine. Transitions are monotonic toward a terminal state except the
// SENT_TO_CLIENT <-> REJECTED_BY_CLIENT resend cycle; CANCELLED is
// reachable from every non-terminal state.
var transitions = map[State][]State{
	StateOpen:             {StateTeamAssigned, StateCancelled},
	StateTeamAssigned:     {StateSentToClient, StateCancelled},
	StateSentToClient:     {StateRejectedByClient, StateAccepted, StateCancelled},
	StateRejectedByClient: {StateSentToClient, StateCancelled},
	StateAccepted:         {},
	StateCancelled:        {},
}

// CanTransition reports whether the state machine allows moving to the
// given state.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state absorbs all further transitions.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateCancelled
}

// Project is a client engagement staffed with a PM and developer-class
// seats. DevAmount is the capacity target counting Developer and
// UnderSelectionDeveloper seats together. HadDelay is sticky: once a
// scheduling conflict is observed it stays true for the project's life.
// FinishedCost is frozen at acceptance and immutable afterwards.
type Project struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	Studio       string    `json:"studio"`
	DevAmount    int       `json:"dev_amount"`
	MaxBudget    float64   `json:"max_budget"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	CreationDate time.Time `json:"creation_date"`
	State        State     `json:"state"`

	ClientID uuid.UUID  `json:"client_id"`
	PMID     *uuid.UUID `json:"pm_id,omitempty"`

	PMAssignDate       *time.Time `json:"pm_assign_date,omitempty"`
	FirstDevAssignDate *time.Time `json:"first_dev_assign_date,omitempty"`
	LastDevAssignDate  *time.Time `json:"last_dev_assign_date,omitempty"`

	HadDelay      bool        `json:"had_delay"`
	PMDelayCancel bool        `json:"pm_delay_cancel"`
	CancelDate    *time.Time  `json:"cancel_date,omitempty"`
	SentCount     int         `json:"sent_count"`
	SentDates     []time.Time `json:"sent_dates"`
	RejectDates   []time.Time `json:"reject_dates"`
	AcceptDate    *time.Time  `json:"accept_date,omitempty"`
	FinishedCost  *float64    `json:"finished_cost,omitempty"`
}
