package models

import "time"

type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles, from most to least privileged
const (
	RoleAdmin   = "admin"
	RoleManager = "gestor"
	RoleBroker  = "corretor"
)
