package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"imobdesk/server/internal/models"
)

// GetWhatsAppInstance returns the actor's registered instance, if any
func (d *Database) GetWhatsAppInstance(ctx context.Context, userID string) (*models.WhatsAppInstance, error) {
	var inst models.WhatsAppInstance
	var phone sql.NullString
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, instance_key, phone, status, user_id, created_at, updated_at
		FROM whatsapp_instances
		WHERE user_id = ?
	`, userID).Scan(&inst.ID, &inst.Name, &inst.InstanceKey, &phone, &inst.Status,
		&inst.UserID, &inst.CreatedAt, &inst.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	inst.Phone = phone.String
	return &inst, nil
}

// UpsertWhatsAppInstance saves or replaces the actor's instance
func (d *Database) UpsertWhatsAppInstance(ctx context.Context, inst *models.WhatsAppInstance) error {
	now := time.Now().UTC()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO whatsapp_instances (name, instance_key, phone, status, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance_key) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, inst.Name, inst.InstanceKey, nullString(inst.Phone), inst.Status, inst.UserID, now, now)
	if err != nil {
		return fmt.Errorf("failed to save whatsapp instance: %w", err)
	}
	return nil
}

// UpdateWhatsAppStatus records the latest state reported by the gateway
func (d *Database) UpdateWhatsAppStatus(ctx context.Context, instanceKey, status string) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE whatsapp_instances SET status = ?, updated_at = ? WHERE instance_key = ?
	`, status, time.Now().UTC(), instanceKey)
	if err != nil {
		return fmt.Errorf("failed to update whatsapp status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("whatsapp instance not found: %s", instanceKey)
	}
	return nil
}

// DeleteWhatsAppInstance removes the actor's instance registration
func (d *Database) DeleteWhatsAppInstance(ctx context.Context, userID string) error {
	_, err := d.db.ExecContext(ctx,
		"DELETE FROM whatsapp_instances WHERE user_id = ?", userID)
	return err
}

// ListWhatsAppInstances returns every registered instance
func (d *Database) ListWhatsAppInstances(ctx context.Context) ([]models.WhatsAppInstance, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, instance_key, phone, status, user_id, created_at, updated_at
		FROM whatsapp_instances
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []models.WhatsAppInstance
	for rows.Next() {
		var inst models.WhatsAppInstance
		var phone sql.NullString
		err := rows.Scan(&inst.ID, &inst.Name, &inst.InstanceKey, &phone, &inst.Status,
			&inst.UserID, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return nil, err
		}
		inst.Phone = phone.String
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
