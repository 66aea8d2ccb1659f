package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionSignup       AuditAction = "SIGNUP"
	AuditActionSignin       AuditAction = "SIGNIN"
	AuditActionCardCreate   AuditAction = "CARD_CREATE"
	AuditActionTransfer     AuditAction = "TRANSFER"
	AuditActionCardDelete   AuditAction = "CARD_DELETE"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserEmail    *string     `json:"user_email,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
