package models

import (
	"time"

	"github.com/lib/pq"
)

// VisitSlotStatus represents the progress of a visit through its day.
// Status records the furthest progress reached: removing a member from an
// ON_THE_WAY slot does not reset it to PENDING.
type VisitSlotStatus string

const (
	VisitSlotStatusPending  VisitSlotStatus = "PENDING"
	VisitSlotStatusOnTheWay VisitSlotStatus = "ON_THE_WAY"
	VisitSlotStatusFinished VisitSlotStatus = "FINISHED"
)

// SlotCapacity is the maximum number of members assigned to a (route, date) pair
const SlotCapacity = 2

// VisitSlot records which members are assigned to a route on a calendar date.
// The (RouteID, Date) pair is the natural key: at most one slot exists per pair.
type VisitSlot struct {
	ID        string          `json:"id" db:"id"`
	RouteID   string          `json:"route_id" db:"route_id"`
	Date      string          `json:"date" db:"date"` // ISO YYYY-MM-DD
	MemberIDs pq.StringArray  `json:"member_ids" db:"member_ids"`
	Status    VisitSlotStatus `json:"status" db:"status"`

	// Report fields, set once the visit is finished
	ReportNotes     *string    `json:"report_notes,omitempty" db:"report_notes"`
	ReportAuthor    *string    `json:"report_author,omitempty" db:"report_author"`
	ReportFollowUp  *bool      `json:"report_follow_up,omitempty" db:"report_follow_up"`
	ReportCreatedAt *time.Time `json:"report_created_at,omitempty" db:"report_created_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasReport reports whether a visit report has been attached
func (s *VisitSlot) HasReport() bool {
	return s.ReportNotes != nil
}

// HasMember reports whether the given member is assigned to the slot
func (s *VisitSlot) HasMember(memberID string) bool {
	for _, id := range s.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// IsFull reports whether the slot has reached capacity
func (s *VisitSlot) IsFull() bool {
	return len(s.MemberIDs) >= SlotCapacity
}

// AssignRequest toggles a member's assignment on a (route, date) slot
type AssignRequest struct {
	RouteID  string `json:"route_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
	MemberID string `json:"member_id" binding:"required"`
}

// FinishVisitRequest attaches a report and marks the visit FINISHED
type FinishVisitRequest struct {
	Notes    string `json:"notes" binding:"required"`
	FollowUp bool   `json:"follow_up"`
}
