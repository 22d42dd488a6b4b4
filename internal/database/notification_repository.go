package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visitcare/visitation-backend/internal/models"
)

// NotificationRepository handles notification inbox database operations
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

// Create inserts a notification for a recipient
func (r *NotificationRepository) Create(recipientID uuid.UUID, message string) error {
	query := `
		INSERT INTO notifications (recipient_id, message, read, created_at)
		VALUES ($1, $2, false, $3)
	`

	_, err := r.db.Exec(query, recipientID, message, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListByRecipient returns a member's notifications, newest first
func (r *NotificationRepository) ListByRecipient(recipientID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := `
		SELECT * FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	err := r.db.Select(&notifications, query, recipientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks one notification read, scoped to its recipient
func (r *NotificationRepository) MarkRead(id int64, recipientID uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE id = $1 AND recipient_id = $2`

	result, err := r.db.Exec(query, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

// MarkAllRead marks all of a member's notifications read
func (r *NotificationRepository) MarkAllRead(recipientID uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE recipient_id = $1 AND read = false`

	_, err := r.db.Exec(query, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

// CountUnread returns the number of unread notifications for a member
func (r *NotificationRepository) CountUnread(recipientID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = false`

	err := r.db.Get(&count, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
