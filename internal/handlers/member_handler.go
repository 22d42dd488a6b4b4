package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/middleware"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/services"
)

// MemberHandler handles member roster HTTP requests
type MemberHandler struct {
	memberRepo   *database.MemberRepository
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberRepo *database.MemberRepository, auditService *services.AuditService, logger *logrus.Logger) *MemberHandler {
	return &MemberHandler{
		memberRepo:   memberRepo,
		auditService: auditService,
		logger:       logger,
	}
}

// ListMembers returns the member roster. All authenticated members can see
// the roster; assignment needs names to pick visit partners.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	var (
		members []models.Member
		err     error
	)

	if c.Query("active") == "true" {
		members, err = h.memberRepo.ListActiveMembers()
	} else {
		members, err = h.memberRepo.ListMembers()
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list members")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

// GetMember returns a single member by ID
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	member, err := h.memberRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, member)
}

// UpdateMember lets an admin change a member's role or active status
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Role == nil && req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	// The last admin cannot demote or deactivate themselves.
	if memberCtx.MemberID == id {
		demoting := req.Role != nil && *req.Role != models.RoleAdmin
		deactivating := req.Active != nil && !*req.Active
		if demoting || deactivating {
			admins, err := h.memberRepo.ListAdmins()
			if err == nil && len(admins) <= 1 {
				c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove the last active admin"})
				return
			}
		}
	}

	changes := map[string]interface{}{}

	if req.Role != nil {
		if err := h.memberRepo.UpdateRole(id, *req.Role); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		changes["role"] = *req.Role
	}

	if req.Active != nil {
		if err := h.memberRepo.SetActive(id, *req.Active); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		changes["active"] = *req.Active
	}

	h.auditService.LogMemberUpdate(memberCtx.MemberID, id, c.ClientIP(), c.Request.UserAgent(), changes)

	h.logger.WithFields(logrus.Fields{
		"admin_id":  memberCtx.MemberID,
		"member_id": id,
		"changes":   changes,
	}).Info("Member updated")

	member, err := h.memberRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load member"})
		return
	}

	c.JSON(http.StatusOK, member)
}
