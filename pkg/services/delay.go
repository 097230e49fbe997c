package services

import (
	"time"

	"github.com/staffhive/staffing-engine/pkg/models"
)

// DelayReport is the result of scanning a project roster for staff members
// still committed to other work.
type DelayReport struct {
	// Delayed is true when at least one assigned staff member has an
	// availability date in the future.
	Delayed bool
	// Day is the latest conflicting availability date, or now when the
	// roster is clear.
	Day time.Time
}

// EvaluateDelay scans the PM and every assigned developer-class employee
// for an availability date strictly after now and tracks the maximum such
// date. It is a pure read: no side effects, no failure modes of its own.
func EvaluateDelay(roster *models.Roster, now time.Time) DelayReport {
	report := DelayReport{Day: now}

	consider := func(employee *models.Employee) {
		if employee == nil {
			return
		}
		if employee.AvailableDate.After(now) && employee.AvailableDate.After(report.Day) {
			report.Delayed = true
			report.Day = employee.AvailableDate
		}
	}

	if roster.PM != nil {
		consider(roster.PM.Employee)
	}
	for i := range roster.Developers {
		consider(roster.Developers[i].Employee)
	}
	for i := range roster.UnderSelection {
		consider(roster.UnderSelection[i].Employee)
	}

	return report
}
