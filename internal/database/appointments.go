package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"imobdesk/server/internal/models"
)

// ReplaceAppointments swaps the actor's webhook-sourced events inside a
// window for a fresh set, in one transaction
func (d *Database) ReplaceAppointments(ctx context.Context, userID string, from, to time.Time, appointments []models.Appointment) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM appointments
		WHERE user_id = ? AND source = 'webhook' AND starts_at >= ? AND starts_at < ?
	`, userID, from, to)
	if err != nil {
		return fmt.Errorf("failed to clear appointment window: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO appointments
		(id, user_id, lead_id, title, client_name, event_type, starts_at, ends_at, source, needs_review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range appointments {
		_, err = stmt.ExecContext(ctx,
			a.ID, a.UserID, a.LeadID, nullString(a.Title), nullString(a.ClientName),
			nullString(a.EventType), a.StartsAt, a.EndsAt, a.Source, a.NeedsReview, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAppointments returns the actor's events inside a window
func (d *Database) GetAppointments(ctx context.Context, userID string, from, to time.Time) ([]models.Appointment, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, lead_id, title, client_name, event_type, starts_at, ends_at, source, needs_review, created_at
		FROM appointments
		WHERE user_id = ? AND starts_at >= ? AND starts_at < ?
		ORDER BY starts_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		var a models.Appointment
		var leadID, title, clientName, eventType, source sql.NullString
		err := rows.Scan(&a.ID, &a.UserID, &leadID, &title, &clientName, &eventType,
			&a.StartsAt, &a.EndsAt, &source, &a.NeedsReview, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		if leadID.Valid {
			lid := leadID.String
			a.LeadID = &lid
		}
		a.Title = title.String
		a.ClientName = clientName.String
		a.EventType = eventType.String
		a.Source = source.String
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
