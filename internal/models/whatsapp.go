package models

import "time"

// WhatsAppInstance stores the gateway connection for one broker
type WhatsAppInstance struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	InstanceKey string    `json:"instance_key"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WhatsAppInstanceRequest is used when registering or updating an instance
type WhatsAppInstanceRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Instance connection states as reported by the gateway
const (
	InstanceDisconnected = "disconnected"
	InstancePairing      = "pairing"
	InstanceConnected    = "connected"
)
