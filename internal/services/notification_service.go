package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/scheduling"
)

// NotificationService turns assignment changes into inbox notifications for
// the members affected by them. Delivery failures are logged, never surfaced:
// a missed notification must not fail the assignment it describes.
type NotificationService struct {
	notificationRepo *database.NotificationRepository
	memberRepo       *database.MemberRepository
	routeRepo        *database.VisitRouteRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo *database.NotificationRepository, memberRepo *database.MemberRepository, routeRepo *database.VisitRouteRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		memberRepo:       memberRepo,
		routeRepo:        routeRepo,
	}
}

// NotifyAssignmentChange notifies the partner left on the slot when the
// roster for a visit changes, plus every admin when an admin made the change
// on someone else's behalf.
func (s *NotificationService) NotifyAssignmentChange(actor models.Member, change scheduling.Change) {
	routeName := change.Slot.RouteID
	if route, err := s.routeRepo.GetByID(change.Slot.RouteID); err == nil {
		routeName = route.Name
	}

	added, removed := diffMembers(change.OldMemberIDs, change.NewMemberIDs)

	for _, partnerID := range change.NewMemberIDs {
		if containsID(added, partnerID) {
			continue
		}
		for _, id := range added {
			s.send(partnerID, fmt.Sprintf("%s joined your visit on %s (%s)", s.memberName(id), change.Slot.Date, routeName))
		}
		for _, id := range removed {
			s.send(partnerID, fmt.Sprintf("%s left your visit on %s (%s)", s.memberName(id), change.Slot.Date, routeName))
		}
	}

	// A member changed by an admin hears about it directly.
	if actor.IsAdmin() {
		actorID := actor.ID.String()
		for _, id := range append(added, removed...) {
			if id != actorID {
				s.send(id, fmt.Sprintf("An admin updated your assignment for %s (%s)", change.Slot.Date, routeName))
			}
		}
	}
}

// NotifyReportFiled tells admins a visit report was filed, flagging follow-ups
func (s *NotificationService) NotifyReportFiled(author models.Member, slot *models.VisitSlot, followUp bool) {
	routeName := slot.RouteID
	if route, err := s.routeRepo.GetByID(slot.RouteID); err == nil {
		routeName = route.Name
	}

	message := fmt.Sprintf("%s filed a report for the %s visit on %s", author.Name, routeName, slot.Date)
	if followUp {
		message += " (follow-up needed)"
	}

	admins, err := s.memberRepo.ListAdmins()
	if err != nil {
		logrus.WithError(err).Warn("Failed to load admins for report notification")
		return
	}

	for _, admin := range admins {
		if admin.ID == author.ID {
			continue
		}
		s.send(admin.ID.String(), message)
	}
}

func (s *NotificationService) send(memberID, message string) {
	recipientID, err := uuid.Parse(memberID)
	if err != nil {
		logrus.WithField("member_id", memberID).Warn("Skipping notification for invalid member ID")
		return
	}

	if err := s.notificationRepo.Create(recipientID, message); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipient_id": memberID,
		}).Warn("Failed to create notification")
	}
}

func (s *NotificationService) memberName(memberID string) string {
	id, err := uuid.Parse(memberID)
	if err != nil {
		return "A member"
	}
	member, err := s.memberRepo.GetByID(id)
	if err != nil {
		return "A member"
	}
	return member.Name
}

func diffMembers(old, next []string) (added, removed []string) {
	for _, id := range next {
		if !containsID(old, id) {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !containsID(next, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
