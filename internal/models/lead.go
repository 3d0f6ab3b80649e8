package models

import (
	"errors"
	"time"
)

// ErrLeadNotFound is returned by lead repositories when no row matches
// the id within the caller's scope
var ErrLeadNotFound = errors.New("lead not found")

type Lead struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	MaritalStatus  string    `json:"marital_status"`
	CPF            string    `json:"cpf"`
	Source         string    `json:"source"`
	Stage          string    `json:"stage"`
	Interest       string    `json:"interest"`
	EstimatedValue float64   `json:"estimated_value"`
	Notes          string    `json:"notes"`
	PropertyID     *string   `json:"property_id"`
	UserID         string    `json:"user_id"`
	ContactDate    time.Time `json:"contact_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Resolved from the owning broker's profile on read; not a column.
	BrokerName string `json:"broker_name,omitempty"`
	BrokerRole string `json:"broker_role,omitempty"`
}

// LeadInput is the payload accepted when creating a lead
type LeadInput struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	MaritalStatus  string  `json:"marital_status"`
	CPF            string  `json:"cpf"`
	Source         string  `json:"source"`
	Stage          string  `json:"stage"`
	Interest       string  `json:"interest"`
	EstimatedValue float64 `json:"estimated_value"`
	Notes          string  `json:"notes"`
	PropertyID     *string `json:"property_id"`
}

// LeadEventType identifies a row-level change on the leads table
type LeadEventType int

const (
	LeadInserted LeadEventType = iota
	LeadUpdated
	LeadDeleted
)

// String returns the string representation of a LeadEventType
func (t LeadEventType) String() string {
	switch t {
	case LeadInserted:
		return "insert"
	case LeadUpdated:
		return "update"
	case LeadDeleted:
		return "delete"
	default:
		return "unknown"
	}
}

// LeadEvent is a row-level change notification published on the feed
type LeadEvent struct {
	Type   LeadEventType
	LeadID string
	UserID string
	Lead   *Lead // nil for deletes
}
