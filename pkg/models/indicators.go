package models

import "time"

// Window is a half-open reporting interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Overlaps reports whether the interval [from, to] intersects the window.
func (w Window) Overlaps(from, to time.Time) bool {
	return from.Before(w.To) && !to.Before(w.From)
}

// MonthlyIndicators are the calendar-month KPIs. Every ratio is nil when
// its denominator is zero: "no data" is reported as absence, never as NaN.
type MonthlyIndicators struct {
	// IDPM: average days a PM's availability trailed project creation.
	IDPM *float64 `json:"idpm"`
	// AP: accepted projects over projects with a non-empty send history, in percent.
	AP *float64 `json:"ap"`
	// APPI: first-attempt acceptance rate among accepted projects, in percent.
	APPI *float64 `json:"appi"`
	// MPP: budget margin over accepted projects, in percent.
	MPP *float64 `json:"mpp"`
	// IDNE: average selection-process duration in days.
	IDNE *float64 `json:"idne"`
	// REPM: share of ever-delayed projects cancelled while delayed, in percent.
	REPM *float64 `json:"repm"`
	// IDE: average days between PM assignment and full team assignment.
	IDE *float64 `json:"ide"`
}

// QuarterlyIndicators are the calendar-quarter client-mix KPIs.
type QuarterlyIndicators struct {
	// ICN: share of quarter projects belonging to new clients, in percent.
	ICN *float64 `json:"icn"`
	// IR: share of quarter projects belonging to returning clients, in percent.
	IR *float64 `json:"ir"`
}

// IndicatorReport is the full batch-analytics result for the current month
// and quarter.
type IndicatorReport struct {
	Month     Window              `json:"month"`
	Quarter   Window              `json:"quarter"`
	Monthly   MonthlyIndicators   `json:"monthly"`
	Quarterly QuarterlyIndicators `json:"quarterly"`
}
