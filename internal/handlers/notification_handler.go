package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/middleware"
)

// NotificationHandler handles notification inbox HTTP requests
type NotificationHandler struct {
	notificationRepo *database.NotificationRepository
	logger           *logrus.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo *database.NotificationRepository, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListNotifications returns the authenticated member's inbox, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := h.notificationRepo.ListByRecipient(memberCtx.MemberID, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	unread, err := h.notificationRepo.CountUnread(memberCtx.MemberID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to count unread notifications")
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread":        unread,
	})
}

// MarkRead marks a single notification read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.notificationRepo.MarkRead(id, memberCtx.MemberID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// MarkAllRead marks the entire inbox read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	if err := h.notificationRepo.MarkAllRead(memberCtx.MemberID); err != nil {
		h.logger.WithError(err).Error("Failed to mark notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read"})
}
