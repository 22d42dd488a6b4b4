package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/scheduling"
	"github.com/visitcare/visitation-backend/pkg/visitdate"
)

var (
	// ErrSlotNotFound indicates the referenced slot does not exist
	ErrSlotNotFound = errors.New("slot not found")

	// ErrNotAssigned indicates the actor is not assigned to the slot they are updating
	ErrNotAssigned = errors.New("you are not assigned to this visit")

	// ErrInvalidTransition indicates a status change that skips or reverses the visit lifecycle
	ErrInvalidTransition = errors.New("invalid visit status transition")
)

// VisitService orchestrates slot assignment: it loads the day's state, runs
// the engine, and persists the resulting change as a single row operation.
type VisitService struct {
	slotRepo   *database.VisitSlotRepository
	routeRepo  *database.VisitRouteRepository
	memberRepo *database.MemberRepository
}

// NewVisitService creates a new visit service
func NewVisitService(slotRepo *database.VisitSlotRepository, routeRepo *database.VisitRouteRepository, memberRepo *database.MemberRepository) *VisitService {
	return &VisitService{
		slotRepo:   slotRepo,
		routeRepo:  routeRepo,
		memberRepo: memberRepo,
	}
}

// DayCoverage pairs a calendar date with its aggregate fill status
type DayCoverage struct {
	Date     string              `json:"date"`
	Coverage scheduling.Coverage `json:"coverage"`
}

// GetSlot returns the slot for a (route, date) pair, or nil when no
// assignment exists yet. Absence is a normal state, not an error.
func (s *VisitService) GetSlot(routeID, date string) (*models.VisitSlot, error) {
	if _, err := visitdate.Validate(date); err != nil {
		return nil, err
	}

	slot, err := s.slotRepo.GetByRouteAndDate(routeID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return slot, nil
}

// DayView returns all slots for a calendar date
func (s *VisitService) DayView(date string) ([]models.VisitSlot, error) {
	if _, err := visitdate.Validate(date); err != nil {
		return nil, err
	}
	return s.slotRepo.GetByDate(date)
}

// Assign toggles the target member's assignment on a (route, date) slot and
// persists the outcome. Engine errors pass through untranslated so handlers
// can map them to response codes.
func (s *VisitService) Assign(actor models.Member, req models.AssignRequest) (*scheduling.Change, error) {
	if _, err := visitdate.Validate(req.Date); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListMembers()
	if err != nil {
		return nil, err
	}

	routes, err := s.routeRepo.ListRoutes()
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.GetByDate(req.Date)
	if err != nil {
		return nil, err
	}

	result, err := scheduling.Assign(actor, req.RouteID, req.Date, req.MemberID, routes, members, slots)
	if err != nil {
		return nil, err
	}

	change := result.Change
	switch {
	case change.Created:
		err = s.slotRepo.Create(&change.Slot)
	case change.Deleted:
		err = s.slotRepo.Delete(change.Slot.ID)
	default:
		err = s.slotRepo.UpdateMembers(change.Slot.ID, change.NewMemberIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist assignment: %w", err)
	}

	return &change, nil
}

// MarkOnTheWay transitions a PENDING slot to ON_THE_WAY. Only a member
// assigned to the slot (or an admin) may report departure.
func (s *VisitService) MarkOnTheWay(actor models.Member, slotID string) (*models.VisitSlot, error) {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if !actor.IsAdmin() && !slot.HasMember(actor.ID.String()) {
		return nil, ErrNotAssigned
	}

	if slot.Status != models.VisitSlotStatusPending {
		return nil, ErrInvalidTransition
	}

	if err := s.slotRepo.UpdateStatus(slot.ID, models.VisitSlotStatusOnTheWay); err != nil {
		return nil, err
	}

	slot.Status = models.VisitSlotStatusOnTheWay
	return slot, nil
}

// FinishVisit attaches the visit report and marks the slot FINISHED.
// The lifecycle is strictly sequential, so only an ON_THE_WAY slot
// can be finished and a finished visit cannot be re-reported.
func (s *VisitService) FinishVisit(actor models.Member, slotID string, req models.FinishVisitRequest) (*models.VisitSlot, error) {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if !actor.IsAdmin() && !slot.HasMember(actor.ID.String()) {
		return nil, ErrNotAssigned
	}

	if slot.Status != models.VisitSlotStatusOnTheWay {
		return nil, ErrInvalidTransition
	}

	author := actor.ID.String()
	if err := s.slotRepo.AttachReport(slot.ID, req.Notes, author, req.FollowUp); err != nil {
		return nil, err
	}

	return s.slotRepo.GetByID(slot.ID)
}

// MonthCoverage returns the per-day coverage summary for a calendar month
func (s *VisitService) MonthCoverage(year, month int) ([]DayCoverage, error) {
	dates, err := visitdate.MonthDates(year, time.Month(month))
	if err != nil {
		return nil, err
	}

	routes, err := s.routeRepo.ListRoutes()
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.GetByDateRange(dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}

	coverage := make([]DayCoverage, 0, len(dates))
	for _, date := range dates {
		coverage = append(coverage, DayCoverage{
			Date:     date,
			Coverage: scheduling.CoverageStatus(date, routes, slots),
		})
	}

	return coverage, nil
}

// UpcomingVisits returns the member's agenda: future assignments without a
// report yet, ascending by date. Today's visit is included.
func (s *VisitService) UpcomingVisits(memberID string) ([]models.VisitSlot, error) {
	slots, err := s.slotRepo.GetByMember(memberID)
	if err != nil {
		return nil, err
	}

	return scheduling.UpcomingVisitsFor(memberID, slots, visitdate.Today()), nil
}

// ListReports returns finished visits with reports, most recent first
func (s *VisitService) ListReports(limit, offset int) ([]models.VisitSlot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.slotRepo.ListReports(limit, offset)
}
