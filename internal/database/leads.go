package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

// leadColumns is the projection shared by every lead query. The join
// resolves the owning broker's display name and role in the same read.
const leadColumns = `
	l.id, l.name, l.email, l.phone, l.address, l.marital_status, l.cpf,
	l.source, l.stage, l.interest, l.estimated_value, l.notes,
	l.property_id, l.user_id, l.contact_date, l.created_at, l.updated_at,
	u.name, u.role
`

// GetLeadsByUser returns every lead owned by userID, newest first
func (d *Database) GetLeadsByUser(ctx context.Context, userID string) ([]models.Lead, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		LEFT JOIN user_profiles u ON u.id = l.user_id
		WHERE l.user_id = ?
		ORDER BY l.created_at DESC
	`, leadColumns)

	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// GetLeadByID returns a single lead scoped to its owner
func (d *Database) GetLeadByID(ctx context.Context, id, userID string) (*models.Lead, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		LEFT JOIN user_profiles u ON u.id = l.user_id
		WHERE l.id = ? AND l.user_id = ?
	`, leadColumns)

	row := d.db.QueryRowContext(ctx, query, id, userID)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// InsertLead persists a new lead and publishes an insert event
func (d *Database) InsertLead(ctx context.Context, lead *models.Lead) error {
	lead.Stage = config.NormalizeStage(lead.Stage)

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO leads
		(id, name, email, phone, address, marital_status, cpf, source, stage,
		 interest, estimated_value, notes, property_id, user_id, contact_date,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		lead.ID, lead.Name, nullString(lead.Email), nullString(lead.Phone),
		nullString(lead.Address), nullString(lead.MaritalStatus),
		nullString(lead.CPF), nullString(lead.Source), lead.Stage,
		nullString(lead.Interest), lead.EstimatedValue, nullString(lead.Notes),
		lead.PropertyID, lead.UserID, lead.ContactDate,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	d.notify(models.LeadEvent{
		Type:   models.LeadInserted,
		LeadID: lead.ID,
		UserID: lead.UserID,
		Lead:   lead,
	})
	return nil
}

// UpdateLeadFields applies a sparse column update and publishes the
// resulting row. Callers pass column names already validated against
// their allow-list; this rejects anything outside the lead table's
// mutable columns as a second line of defense.
func (d *Database) UpdateLeadFields(ctx context.Context, id, userID string, fields map[string]interface{}) (*models.Lead, error) {
	if len(fields) == 0 {
		return d.GetLeadByID(ctx, id, userID)
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+3)
	for column, value := range fields {
		if !mutableLeadColumns[column] {
			return nil, fmt.Errorf("column not updatable: %s", column)
		}
		setClauses = append(setClauses, column+" = ?")
		args = append(args, value)
	}
	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, userID)

	query := fmt.Sprintf(
		"UPDATE leads SET %s WHERE id = ? AND user_id = ?",
		strings.Join(setClauses, ", "),
	)
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrLeadNotFound, id)
	}

	lead, err := d.GetLeadByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if lead != nil {
		d.notify(models.LeadEvent{
			Type:   models.LeadUpdated,
			LeadID: lead.ID,
			UserID: lead.UserID,
			Lead:   lead,
		})
	}
	return lead, nil
}

// UpdateLeadStage moves a lead to a new funnel stage
func (d *Database) UpdateLeadStage(ctx context.Context, id, userID, stage string) (*models.Lead, error) {
	return d.UpdateLeadFields(ctx, id, userID, map[string]interface{}{"stage": stage})
}

// DeleteLead removes a lead permanently and publishes a delete event
func (d *Database) DeleteLead(ctx context.Context, id, userID string) error {
	result, err := d.db.ExecContext(ctx,
		"DELETE FROM leads WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", models.ErrLeadNotFound, id)
	}

	d.notify(models.LeadEvent{
		Type:   models.LeadDeleted,
		LeadID: id,
		UserID: userID,
	})
	return nil
}

// mutableLeadColumns lists the columns a sparse update may touch
var mutableLeadColumns = map[string]bool{
	"name":            true,
	"email":           true,
	"phone":           true,
	"address":         true,
	"marital_status":  true,
	"cpf":             true,
	"source":          true,
	"stage":           true,
	"interest":        true,
	"estimated_value": true,
	"notes":           true,
	"property_id":     true,
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var lead models.Lead
	var email, phone, address, maritalStatus, cpf, source, interest, notes sql.NullString
	var propertyID, brokerName, brokerRole sql.NullString
	var estimatedValue sql.NullFloat64
	var contactDate sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&email,
		&phone,
		&address,
		&maritalStatus,
		&cpf,
		&source,
		&lead.Stage,
		&interest,
		&estimatedValue,
		&notes,
		&propertyID,
		&lead.UserID,
		&contactDate,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&brokerName,
		&brokerRole,
	)
	if err != nil {
		return nil, err
	}

	lead.Email = email.String
	lead.Phone = phone.String
	lead.Address = address.String
	lead.MaritalStatus = maritalStatus.String
	lead.CPF = cpf.String
	lead.Source = source.String
	lead.Interest = interest.String
	lead.Notes = notes.String
	lead.BrokerName = brokerName.String
	lead.BrokerRole = brokerRole.String
	if estimatedValue.Valid {
		lead.EstimatedValue = estimatedValue.Float64
	}
	if propertyID.Valid {
		pid := propertyID.String
		lead.PropertyID = &pid
	}
	if contactDate.Valid {
		lead.ContactDate = contactDate.Time
	}

	// Stage invariant: unknown or legacy values collapse to the default
	lead.Stage = config.NormalizeStage(lead.Stage)

	return &lead, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
