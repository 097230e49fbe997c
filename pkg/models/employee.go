// Package models contains domain types for staffing-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the person record shared by all staff roles. AvailableDate is
// the earliest date the employee is free to be newly staffed; a future value
// means the employee is still committed to unfinished work.
type Employee struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Salary        float64   `json:"salary"`
	AvailableDate time.Time `json:"available_date"`
}

// Committed reports whether the employee is still booked elsewhere at t.
func (e *Employee) Committed(t time.Time) bool {
	return e.AvailableDate.After(t)
}
