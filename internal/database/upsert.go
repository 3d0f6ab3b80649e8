package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

// leadRow maps the intake batch path onto the leads table
type leadRow struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Email          *string
	Phone          *string
	Address        *string
	MaritalStatus  *string
	CPF            *string `gorm:"column:cpf"`
	Source         *string
	Stage          string
	Interest       *string
	EstimatedValue float64
	Notes          *string
	PropertyID     *string
	UserID         string
	ContactDate    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (leadRow) TableName() string {
	return "leads"
}

// UpsertLeads writes a batch of intake leads inside the given
// transaction, replacing contact fields on id conflicts
func UpsertLeads(tx *gorm.DB, batch []*models.Lead) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([]leadRow, 0, len(batch))
	for _, lead := range batch {
		rows = append(rows, leadRow{
			ID:             lead.ID,
			Name:           lead.Name,
			Email:          optional(lead.Email),
			Phone:          optional(lead.Phone),
			Address:        optional(lead.Address),
			MaritalStatus:  optional(lead.MaritalStatus),
			CPF:            optional(lead.CPF),
			Source:         optional(lead.Source),
			Stage:          config.NormalizeStage(lead.Stage),
			Interest:       optional(lead.Interest),
			EstimatedValue: lead.EstimatedValue,
			Notes:          optional(lead.Notes),
			PropertyID:     lead.PropertyID,
			UserID:         lead.UserID,
			ContactDate:    lead.ContactDate,
			CreatedAt:      lead.CreatedAt,
			UpdatedAt:      lead.UpdatedAt,
		})
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "source", "stage", "interest",
			"estimated_value", "notes", "updated_at",
		}),
	}).Create(&rows).Error
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
