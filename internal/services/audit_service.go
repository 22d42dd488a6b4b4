package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/utils"
)

// AuditService handles audit logging for security and assignment events
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	MemberID   *uuid.UUID             // Can be nil for pre-authentication events
	Action     string                 // Action type (e.g., "login", "assignment", "report_filed")
	EntityType string                 // Type of entity affected (e.g., "member", "slot", "route")
	EntityID   string                 // ID of the affected entity (can be empty)
	IPAddress  string                 // Client IP address
	UserAgent  string                 // Client user agent
	Details    map[string]interface{} // Additional details as JSONB
}

// LogLogin logs a successful sign-in
func (s *AuditService) LogLogin(memberID uuid.UUID, email, ipAddress, userAgent string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	details := map[string]interface{}{
		"email":       email,
		"device_info": deviceInfo,
	}

	return s.logEvent(AuditEvent{
		MemberID:   &memberID,
		Action:     "login",
		EntityType: "member",
		EntityID:   memberID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogLoginFailure logs a failed sign-in attempt
func (s *AuditService) LogLoginFailure(email, ipAddress, userAgent, reason string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	details := map[string]interface{}{
		"email":       email,
		"reason":      reason,
		"device_info": deviceInfo,
	}

	return s.logEvent(AuditEvent{
		MemberID:   nil, // No member ID for failed attempts
		Action:     "login_failed",
		EntityType: "member",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogAssignment logs an assignment toggle on a slot
func (s *AuditService) LogAssignment(actorID uuid.UUID, slotID, routeID, date, targetMemberID, ipAddress, userAgent string, removed bool) error {
	action := "assignment_added"
	if removed {
		action = "assignment_removed"
	}

	details := map[string]interface{}{
		"route_id":  routeID,
		"date":      date,
		"member_id": targetMemberID,
	}

	return s.logEvent(AuditEvent{
		MemberID:   &actorID,
		Action:     action,
		EntityType: "slot",
		EntityID:   slotID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogStatusChange logs a visit status transition
func (s *AuditService) LogStatusChange(actorID uuid.UUID, slotID, from, to, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"from": from,
		"to":   to,
	}

	return s.logEvent(AuditEvent{
		MemberID:   &actorID,
		Action:     "status_change",
		EntityType: "slot",
		EntityID:   slotID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogReportFiled logs a visit report submission
func (s *AuditService) LogReportFiled(actorID uuid.UUID, slotID, ipAddress, userAgent string, followUp bool) error {
	details := map[string]interface{}{
		"follow_up": followUp,
	}

	return s.logEvent(AuditEvent{
		MemberID:   &actorID,
		Action:     "report_filed",
		EntityType: "slot",
		EntityID:   slotID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogMemberUpdate logs an admin changing another member's role or status
func (s *AuditService) LogMemberUpdate(actorID, targetID uuid.UUID, ipAddress, userAgent string, changes map[string]interface{}) error {
	return s.logEvent(AuditEvent{
		MemberID:   &actorID,
		Action:     "member_update",
		EntityType: "member",
		EntityID:   targetID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    changes,
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (member_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	var entityID *string
	if event.EntityID != "" {
		entityID = &event.EntityID
	}

	_, err = s.db.Exec(
		query,
		event.MemberID,
		event.Action,
		event.EntityType,
		entityID,
		event.IPAddress,
		event.UserAgent,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// GetRecentEvents retrieves recent audit events for a member
func (s *AuditService) GetRecentEvents(memberID uuid.UUID, limit int) ([]map[string]interface{}, error) {
	query := `
		SELECT action, entity_type, ip_address, user_agent, details, created_at
		FROM audit_logs
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(query, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	defer rows.Close()

	events := []map[string]interface{}{}
	for rows.Next() {
		var action, entityType, ipAddress, userAgent string
		var details []byte
		var createdAt time.Time

		err := rows.Scan(&action, &entityType, &ipAddress, &userAgent, &details, &createdAt)
		if err != nil {
			continue
		}

		var parsed map[string]interface{}
		if err := json.Unmarshal(details, &parsed); err != nil {
			parsed = nil
		}

		events = append(events, map[string]interface{}{
			"action":      action,
			"entity_type": entityType,
			"ip_address":  ipAddress,
			"user_agent":  userAgent,
			"details":     parsed,
			"created_at":  createdAt,
		})
	}

	return events, nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	query := `
		DELETE FROM audit_logs
		WHERE created_at < $1
	`

	result, err := s.db.Exec(query, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
