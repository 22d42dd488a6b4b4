package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an inbox entry informing a member of a slot change
type Notification struct {
	ID          int64     `json:"id" db:"id"`
	RecipientID uuid.UUID `json:"recipient_id" db:"recipient_id"`
	Message     string    `json:"message" db:"message"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
