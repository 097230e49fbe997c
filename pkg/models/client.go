package models

import "github.com/google/uuid"

// Client is the customer a project is delivered to. PastProjects is an
// append-only, deduplicated history of project ids ever created for the
// client; it backs the new-vs-returning client indicators.
type Client struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	ContactName  string      `json:"contact_name"`
	ContactEmail string      `json:"contact_email"`
	ContactPhone string      `json:"contact_phone"`
	PastProjects []uuid.UUID `json:"past_projects"`
}
