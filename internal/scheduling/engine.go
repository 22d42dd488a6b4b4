package scheduling

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/visitcare/visitation-backend/internal/models"
)

// Sentinel errors surfaced to callers for user-facing display.
// All failures are synchronous validation errors; the input collection is
// never mutated on failure.
var (
	// ErrPermissionDenied indicates a non-admin actor tried to change another member's assignment
	ErrPermissionDenied = errors.New("only admins may change another member's assignment")

	// ErrSlotFull indicates an attempt to add a third distinct member to a slot
	ErrSlotFull = errors.New("slot already has two assigned members")

	// ErrMemberNotFound indicates the target member does not exist in the roster
	ErrMemberNotFound = errors.New("member not found")

	// ErrRouteNotFound indicates the route does not exist
	ErrRouteNotFound = errors.New("route not found")
)

// CoverageLevel classifies how filled a day's required assignments are
type CoverageLevel string

const (
	CoverageEmpty   CoverageLevel = "EMPTY"
	CoveragePartial CoverageLevel = "PARTIAL"
	CoverageFull    CoverageLevel = "FULL"
)

// Coverage is the aggregate fill status for a single date
type Coverage struct {
	Status   CoverageLevel `json:"status"`
	Filled   int           `json:"filled"`
	Required int           `json:"required"`
}

// Change describes what an Assign call did, for the caller to persist and
// translate into notifications. Exactly one slot is touched per call.
type Change struct {
	Slot         models.VisitSlot `json:"slot"`
	Created      bool             `json:"created"`
	Deleted      bool             `json:"deleted"`
	OldMemberIDs []string         `json:"old_member_ids"`
	NewMemberIDs []string         `json:"new_member_ids"`
}

// Result is the outcome of a successful Assign call
type Result struct {
	Slots  []models.VisitSlot
	Change Change
}

// SlotFor looks up the slot for the (routeID, date) natural key.
// At most one slot exists per pair after any sequence of Assign calls.
func SlotFor(slots []models.VisitSlot, routeID, date string) (*models.VisitSlot, bool) {
	for i := range slots {
		if slots[i].RouteID == routeID && slots[i].Date == date {
			return &slots[i], true
		}
	}
	return nil, false
}

// Assign toggles targetMemberID's membership on the (routeID, date) slot.
//
// Constraints, checked in order:
//  1. Permission: actor must be an admin or the target member themselves.
//  2. Capacity: a slot holds at most two distinct members.
//  3. Toggle: a member already in the slot is removed; otherwise appended.
//
// A slot is created on first assignment (status PENDING) and deleted when the
// last member leaves, unless a report is attached, in which case the slot is
// retained with an empty member list for historical integrity.
//
// The input slice is never mutated; on success the returned Result holds the
// updated collection plus the Change that was applied.
func Assign(actor models.Member, routeID, date, targetMemberID string, routes []models.VisitRoute, members []models.Member, slots []models.VisitSlot) (Result, error) {
	if !actor.IsAdmin() && actor.ID.String() != targetMemberID {
		return Result{}, ErrPermissionDenied
	}

	if !memberExists(members, targetMemberID) {
		return Result{}, ErrMemberNotFound
	}
	if !routeExists(routes, routeID) {
		return Result{}, ErrRouteNotFound
	}

	existing, found := SlotFor(slots, routeID, date)

	if !found {
		slot := models.VisitSlot{
			ID:        uuid.New().String(),
			RouteID:   routeID,
			Date:      date,
			MemberIDs: []string{targetMemberID},
			Status:    models.VisitSlotStatusPending,
		}
		updated := make([]models.VisitSlot, len(slots), len(slots)+1)
		copy(updated, slots)
		updated = append(updated, slot)
		return Result{
			Slots: updated,
			Change: Change{
				Slot:         slot,
				Created:      true,
				OldMemberIDs: nil,
				NewMemberIDs: []string{targetMemberID},
			},
		}, nil
	}

	old := append([]string(nil), existing.MemberIDs...)

	if existing.HasMember(targetMemberID) {
		// Toggle off: remove the member.
		remaining := make([]string, 0, len(old)-1)
		for _, id := range old {
			if id != targetMemberID {
				remaining = append(remaining, id)
			}
		}

		if len(remaining) == 0 && !existing.HasReport() {
			updated := make([]models.VisitSlot, 0, len(slots)-1)
			for _, s := range slots {
				if s.ID != existing.ID {
					updated = append(updated, s)
				}
			}
			deleted := *existing
			deleted.MemberIDs = remaining
			return Result{
				Slots: updated,
				Change: Change{
					Slot:         deleted,
					Deleted:      true,
					OldMemberIDs: old,
					NewMemberIDs: remaining,
				},
			}, nil
		}

		return replaceMembers(slots, existing, old, remaining), nil
	}

	if existing.IsFull() {
		return Result{}, ErrSlotFull
	}

	return replaceMembers(slots, existing, old, append(append([]string(nil), old...), targetMemberID)), nil
}

// CoverageStatus derives the aggregate fill status for a date.
// required = 2 per active route; filled = total assigned members across the
// date's slots. The aggregate is route-blind: it does not verify per-route fill.
func CoverageStatus(date string, routes []models.VisitRoute, slots []models.VisitSlot) Coverage {
	required := 0
	for _, r := range routes {
		if r.Active {
			required += models.SlotCapacity
		}
	}

	filled := 0
	for _, s := range slots {
		if s.Date == date {
			filled += len(s.MemberIDs)
		}
	}

	status := CoveragePartial
	switch {
	case filled == 0:
		status = CoverageEmpty
	case filled == required && required > 0:
		status = CoverageFull
	}

	return Coverage{Status: status, Filled: filled, Required: required}
}

// UpcomingVisitsFor returns the member's agenda: slots they are assigned to,
// on or after asOfDate, with no report yet, ascending by date. Lexicographic
// comparison is correct for ISO dates.
func UpcomingVisitsFor(memberID string, slots []models.VisitSlot, asOfDate string) []models.VisitSlot {
	var upcoming []models.VisitSlot
	for _, s := range slots {
		if s.HasMember(memberID) && s.Date >= asOfDate && !s.HasReport() {
			upcoming = append(upcoming, s)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Date < upcoming[j].Date
	})
	return upcoming
}

func replaceMembers(slots []models.VisitSlot, target *models.VisitSlot, old, next []string) Result {
	updated := make([]models.VisitSlot, len(slots))
	copy(updated, slots)

	var changed models.VisitSlot
	for i := range updated {
		if updated[i].ID == target.ID {
			updated[i].MemberIDs = next
			changed = updated[i]
			break
		}
	}

	return Result{
		Slots: updated,
		Change: Change{
			Slot:         changed,
			OldMemberIDs: old,
			NewMemberIDs: next,
		},
	}
}

func memberExists(members []models.Member, id string) bool {
	for i := range members {
		if members[i].ID.String() == id {
			return true
		}
	}
	return false
}

func routeExists(routes []models.VisitRoute, id string) bool {
	for i := range routes {
		if routes[i].ID == id {
			return true
		}
	}
	return false
}
