package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a security or assignment audit entry
type AuditLog struct {
	ID         int64         `json:"id" db:"id"`
	MemberID   uuid.NullUUID `json:"member_id,omitempty" db:"member_id"`
	Action     string        `json:"action" db:"action"`
	EntityType *string       `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   *string       `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  *string       `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string       `json:"user_agent,omitempty" db:"user_agent"`
	Details    *string       `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
