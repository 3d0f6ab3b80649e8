package models

import "time"

// Appointment is a calendar event returned by the scheduling webhook
type Appointment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LeadID      *string   `json:"lead_id"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	EventType   string    `json:"event_type"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Source      string    `json:"source"`
	NeedsReview bool      `json:"needs_review"`
	CreatedAt   time.Time `json:"created_at"`
}
