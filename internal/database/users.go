package database

import (
	"context"
	"database/sql"
	"fmt"

	"imobdesk/server/internal/models"
)

// GetUserByEmail looks a profile up for login
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, department, password_hash, created_at
		FROM user_profiles
		WHERE LOWER(email) = LOWER(?)
	`, email)
	return scanUser(row)
}

// GetUserByID returns a single profile
func (d *Database) GetUserByID(ctx context.Context, id string) (*models.UserProfile, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, department, password_hash, created_at
		FROM user_profiles
		WHERE id = ?
	`, id)
	return scanUser(row)
}

// InsertUser creates a profile
func (d *Database) InsertUser(ctx context.Context, u *models.UserProfile) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, name, email, phone, role, department, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, nullString(u.Phone), u.Role, nullString(u.Department), u.PasswordHash, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// ListUsers returns every profile, for the admin screen
func (d *Database) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, email, phone, role, department, password_hash, created_at
		FROM user_profiles
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*models.UserProfile, error) {
	var u models.UserProfile
	var phone, department sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.Role, &department, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.Department = department.String
	return &u, nil
}
