package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"imobdesk/server/internal/models"
)

// InsertContractTemplate stores an uploaded template
func (d *Database) InsertContractTemplate(ctx context.Context, t *models.ContractTemplate) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO contract_templates (id, name, content, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, t.Content, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contract template: %w", err)
	}
	return nil
}

// GetContractTemplate returns a template unless it was soft-deleted
func (d *Database) GetContractTemplate(ctx context.Context, id string) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, content, created_at
		FROM contract_templates
		WHERE id = ? AND deleted_at IS NULL
	`, id).Scan(&t.ID, &t.Name, &t.Content, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListContractTemplates returns all live templates
func (d *Database) ListContractTemplates(ctx context.Context) ([]models.ContractTemplate, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, content, created_at
		FROM contract_templates
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.ContractTemplate
	for rows.Next() {
		var t models.ContractTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// SoftDeleteContractTemplate hides a template from listings
func (d *Database) SoftDeleteContractTemplate(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE contract_templates SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete contract template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("contract template not found: %s", id)
	}
	return nil
}

// InsertContract stores a merged contract
func (d *Database) InsertContract(ctx context.Context, c *models.Contract) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO contracts
		(id, template_id, lead_id, property_id, title, content, status, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.TemplateID, c.LeadID, c.PropertyID, c.Title, c.Content, c.Status, c.UserID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// GetContractsByUser returns the actor's live contracts, newest first
func (d *Database) GetContractsByUser(ctx context.Context, userID string) ([]models.Contract, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, template_id, lead_id, property_id, title, content, status, user_id, created_at, updated_at
		FROM contracts
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		var propertyID sql.NullString
		err := rows.Scan(&c.ID, &c.TemplateID, &c.LeadID, &propertyID, &c.Title,
			&c.Content, &c.Status, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if propertyID.Valid {
			pid := propertyID.String
			c.PropertyID = &pid
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// UpdateContractStatus advances a contract through its lifecycle
func (d *Database) UpdateContractStatus(ctx context.Context, id, userID, status string) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE contracts SET status = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`, status, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update contract status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("contract not found: %s", id)
	}
	return nil
}

// SoftDeleteContract hides a contract; the row is kept for auditing
func (d *Database) SoftDeleteContract(ctx context.Context, id, userID string) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE contracts SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("contract not found: %s", id)
	}
	return nil
}
