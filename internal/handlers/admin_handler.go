package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/services"
)

// AdminHandler handles the admin dashboard HTTP requests
type AdminHandler struct {
	memberRepo   *database.MemberRepository
	slotRepo     *database.VisitSlotRepository
	routeRepo    *database.VisitRouteRepository
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(memberRepo *database.MemberRepository, slotRepo *database.VisitSlotRepository, routeRepo *database.VisitRouteRepository, auditService *services.AuditService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		memberRepo:   memberRepo,
		slotRepo:     slotRepo,
		routeRepo:    routeRepo,
		auditService: auditService,
		logger:       logger,
	}
}

// Dashboard returns headline counts for the admin landing page
func (h *AdminHandler) Dashboard(c *gin.Context) {
	members, err := h.memberRepo.ListActiveMembers()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dashboard members")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	routes, err := h.routeRepo.ListActiveRoutes()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dashboard routes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	pending, err := h.slotRepo.CountByStatus(models.VisitSlotStatusPending)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count pending visits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	finished, err := h.slotRepo.CountByStatus(models.VisitSlotStatusFinished)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count finished visits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	followUps, err := h.slotRepo.CountFollowUps()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count follow-ups")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active_members":  len(members),
		"active_routes":   len(routes),
		"pending_visits":  pending,
		"finished_visits": finished,
		"follow_ups":      followUps,
	})
}

// MemberActivity returns recent audit events for a member
func (h *AdminHandler) MemberActivity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	events, err := h.auditService.GetRecentEvents(id, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load member activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load member activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
