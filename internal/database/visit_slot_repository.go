package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/visitcare/visitation-backend/internal/models"
)

// VisitSlotRepository handles visit slot database operations.
// The (route_id, date) pair is the natural key; a unique index backs the
// one-slot-per-pair invariant at the storage layer.
type VisitSlotRepository struct {
	db DB
}

// NewVisitSlotRepository creates a new visit slot repository
func NewVisitSlotRepository(db DB) *VisitSlotRepository {
	return &VisitSlotRepository{
		db: db,
	}
}

// GetByRouteAndDate fetches the slot for a (route, date) pair.
// Returns sql.ErrNoRows when no slot exists for the pair.
func (r *VisitSlotRepository) GetByRouteAndDate(routeID, date string) (*models.VisitSlot, error) {
	var slot models.VisitSlot
	query := `SELECT * FROM visit_slots WHERE route_id = $1 AND date = $2`

	err := r.db.Get(&slot, query, routeID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch slot: %w", err)
	}

	return &slot, nil
}

// GetByID fetches a slot by ID
func (r *VisitSlotRepository) GetByID(id string) (*models.VisitSlot, error) {
	var slot models.VisitSlot
	query := `SELECT * FROM visit_slots WHERE id = $1`

	err := r.db.Get(&slot, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch slot: %w", err)
	}

	return &slot, nil
}

// GetByDate returns all slots for a calendar date
func (r *VisitSlotRepository) GetByDate(date string) ([]models.VisitSlot, error) {
	slots := []models.VisitSlot{}
	query := `SELECT * FROM visit_slots WHERE date = $1 ORDER BY route_id ASC`

	err := r.db.Select(&slots, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots for date: %w", err)
	}

	return slots, nil
}

// GetByDateRange returns all slots with from <= date <= to, ascending by date
func (r *VisitSlotRepository) GetByDateRange(from, to string) ([]models.VisitSlot, error) {
	slots := []models.VisitSlot{}
	query := `SELECT * FROM visit_slots WHERE date >= $1 AND date <= $2 ORDER BY date ASC, route_id ASC`

	err := r.db.Select(&slots, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots for range: %w", err)
	}

	return slots, nil
}

// GetByMember returns all slots a member is assigned to, ascending by date
func (r *VisitSlotRepository) GetByMember(memberID string) ([]models.VisitSlot, error) {
	slots := []models.VisitSlot{}
	query := `SELECT * FROM visit_slots WHERE $1 = ANY(member_ids) ORDER BY date ASC`

	err := r.db.Select(&slots, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots for member: %w", err)
	}

	return slots, nil
}

// Create inserts a new slot
func (r *VisitSlotRepository) Create(slot *models.VisitSlot) error {
	now := time.Now()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	query := `
		INSERT INTO visit_slots (id, route_id, date, member_ids, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		slot.ID,
		slot.RouteID,
		slot.Date,
		pq.Array([]string(slot.MemberIDs)),
		slot.Status,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	return nil
}

// UpdateMembers replaces a slot's member list
func (r *VisitSlotRepository) UpdateMembers(id string, memberIDs []string) error {
	query := `UPDATE visit_slots SET member_ids = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, pq.Array(memberIDs), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update slot members: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// UpdateStatus changes a slot's status
func (r *VisitSlotRepository) UpdateStatus(id string, status models.VisitSlotStatus) error {
	query := `UPDATE visit_slots SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update slot status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// AttachReport stores the visit report and marks the slot FINISHED
func (r *VisitSlotRepository) AttachReport(id, notes, author string, followUp bool) error {
	query := `
		UPDATE visit_slots
		SET status = $1, report_notes = $2, report_author = $3,
		    report_follow_up = $4, report_created_at = $5, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(query, models.VisitSlotStatusFinished, notes, author, followUp, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to attach report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// Delete removes a slot. Only called when the last member leaves a slot
// that has no report attached.
func (r *VisitSlotRepository) Delete(id string) error {
	query := `DELETE FROM visit_slots WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// ListReports returns finished slots with reports, most recent first
func (r *VisitSlotRepository) ListReports(limit, offset int) ([]models.VisitSlot, error) {
	slots := []models.VisitSlot{}
	query := `
		SELECT * FROM visit_slots
		WHERE report_notes IS NOT NULL
		ORDER BY report_created_at DESC
		LIMIT $1 OFFSET $2
	`

	err := r.db.Select(&slots, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return slots, nil
}

// CountByStatus returns the number of slots in the given status
func (r *VisitSlotRepository) CountByStatus(status models.VisitSlotStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM visit_slots WHERE status = $1`

	err := r.db.Get(&count, query, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}

	return count, nil
}

// CountFollowUps returns the number of reports flagged for follow-up
func (r *VisitSlotRepository) CountFollowUps() (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM visit_slots WHERE report_follow_up = true`

	err := r.db.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count follow-ups: %w", err)
	}

	return count, nil
}
