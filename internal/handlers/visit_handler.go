package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/middleware"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/scheduling"
	"github.com/visitcare/visitation-backend/internal/services"
	"github.com/visitcare/visitation-backend/pkg/visitdate"
)

// VisitHandler handles slot assignment and visit lifecycle HTTP requests
type VisitHandler struct {
	visitService        *services.VisitService
	notificationService *services.NotificationService
	auditService        *services.AuditService
	memberRepo          *database.MemberRepository
	logger              *logrus.Logger
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(visitService *services.VisitService, notificationService *services.NotificationService, auditService *services.AuditService, memberRepo *database.MemberRepository, logger *logrus.Logger) *VisitHandler {
	return &VisitHandler{
		visitService:        visitService,
		notificationService: notificationService,
		auditService:        auditService,
		memberRepo:          memberRepo,
		logger:              logger,
	}
}

// GetSlot returns the slot for a (route, date) pair, or an empty body when no
// assignment exists. Absence is a normal calendar state, not a 404.
func (h *VisitHandler) GetSlot(c *gin.Context) {
	routeID := c.Query("route_id")
	date := c.Query("date")
	if routeID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "route_id and date query parameters are required"})
		return
	}

	slot, err := h.visitService.GetSlot(routeID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

// DayView returns all slots for a calendar date
func (h *VisitHandler) DayView(c *gin.Context) {
	date := c.Param("date")

	slots, err := h.visitService.DayView(date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots, "count": len(slots)})
}

// Assign toggles a member's assignment on a (route, date) slot
func (h *VisitHandler) Assign(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	actor, err := h.memberRepo.GetByID(memberCtx.MemberID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member no longer exists"})
		return
	}

	change, err := h.visitService.Assign(*actor, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	removed := len(change.NewMemberIDs) < len(change.OldMemberIDs)
	h.auditService.LogAssignment(actor.ID, change.Slot.ID, req.RouteID, req.Date, req.MemberID,
		c.ClientIP(), c.Request.UserAgent(), removed)
	h.notificationService.NotifyAssignmentChange(*actor, *change)

	h.logger.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"member_id": req.MemberID,
		"route_id":  req.RouteID,
		"date":      req.Date,
		"removed":   removed,
	}).Info("Assignment toggled")

	status := http.StatusOK
	if change.Created {
		status = http.StatusCreated
	}

	c.JSON(status, gin.H{"change": change})
}

// MarkOnTheWay transitions a visit to ON_THE_WAY
func (h *VisitHandler) MarkOnTheWay(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	actor, err := h.memberRepo.GetByID(memberCtx.MemberID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member no longer exists"})
		return
	}

	slot, err := h.visitService.MarkOnTheWay(*actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.auditService.LogStatusChange(actor.ID, slot.ID,
		string(models.VisitSlotStatusPending), string(models.VisitSlotStatusOnTheWay),
		c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, slot)
}

// FinishVisit attaches the report and marks the visit FINISHED
func (h *VisitHandler) FinishVisit(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	var req models.FinishVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	actor, err := h.memberRepo.GetByID(memberCtx.MemberID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member no longer exists"})
		return
	}

	slot, err := h.visitService.FinishVisit(*actor, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.auditService.LogReportFiled(actor.ID, slot.ID, c.ClientIP(), c.Request.UserAgent(), req.FollowUp)
	h.notificationService.NotifyReportFiled(*actor, slot, req.FollowUp)

	h.logger.WithFields(logrus.Fields{
		"member_id": actor.ID,
		"slot_id":   slot.ID,
		"follow_up": req.FollowUp,
	}).Info("Visit report filed")

	c.JSON(http.StatusOK, slot)
}

// MonthCoverage returns the per-day coverage summary for a month
func (h *VisitHandler) MonthCoverage(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year query parameter is required"})
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month query parameter must be 1-12"})
		return
	}

	coverage, err := h.visitService.MonthCoverage(year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": coverage})
}

// MyVisits returns the authenticated member's upcoming agenda
func (h *VisitHandler) MyVisits(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	visits, err := h.visitService.UpcomingVisits(memberCtx.MemberID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load upcoming visits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load upcoming visits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visits": visits, "count": len(visits)})
}

// ListReports returns filed visit reports, most recent first (admin only)
func (h *VisitHandler) ListReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reports, err := h.visitService.ListReports(limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// respondError maps engine and service errors to response codes. Unrecognized
// errors are logged and returned as opaque 500s.
func (h *VisitHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "PERMISSION_DENIED"})
	case errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "NOT_ASSIGNED"})
	case errors.Is(err, scheduling.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "SLOT_FULL"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "INVALID_TRANSITION"})
	case errors.Is(err, scheduling.ErrMemberNotFound),
		errors.Is(err, scheduling.ErrRouteNotFound),
		errors.Is(err, services.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, visitdate.ErrEmptyDate), errors.Is(err, visitdate.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_DATE"})
	default:
		h.logger.WithError(err).Error("Visit operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
