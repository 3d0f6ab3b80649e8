package models

import "time"

// ContractTemplate is an uploaded document with {{placeholder}} markers
type ContractTemplate struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Contract is a template merged against a lead and optional property
type Contract struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	LeadID     string     `json:"lead_id"`
	PropertyID *string    `json:"property_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     string     `json:"status"`
	UserID     string     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Contract statuses
const (
	ContractDraft  = "rascunho"
	ContractIssued = "emitido"
	ContractSigned = "assinado"
)
