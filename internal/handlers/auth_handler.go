package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/middleware"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/services"
	"github.com/visitcare/visitation-backend/pkg/jwt"
)

// AuthHandler handles member authentication HTTP requests
type AuthHandler struct {
	memberRepo          *database.MemberRepository
	jwtService          *jwt.Service
	auditService        *services.AuditService
	accessExpirySeconds int64
	bcryptCost          int
	logger              *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(memberRepo *database.MemberRepository, jwtService *jwt.Service, auditService *services.AuditService, accessExpirySeconds int64, bcryptCost int, logger *logrus.Logger) *AuthHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		memberRepo:          memberRepo,
		jwtService:          jwtService,
		auditService:        auditService,
		accessExpirySeconds: accessExpirySeconds,
		bcryptCost:          bcryptCost,
		logger:              logger,
	}
}

// Register handles member sign-up
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	member, err := h.memberRepo.CreateMember(req.Name, strings.ToLower(req.Email), string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			c.JSON(http.StatusConflict, gin.H{"error": "A member with this email already exists"})
			return
		}
		h.logger.WithError(err).Error("Failed to create member")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	response, err := h.buildAuthResponse(member)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens after registration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"member_id": member.ID,
		"email":     member.Email,
	}).Info("Member registered")

	c.JSON(http.StatusCreated, response)
}

// Login handles member sign-in
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	email := strings.ToLower(req.Email)
	member, err := h.memberRepo.GetByEmail(email)
	if err != nil {
		h.auditService.LogLoginFailure(email, c.ClientIP(), c.Request.UserAgent(), "unknown email")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !member.Active {
		h.auditService.LogLoginFailure(email, c.ClientIP(), c.Request.UserAgent(), "deactivated account")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account has been deactivated"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		h.auditService.LogLoginFailure(email, c.ClientIP(), c.Request.UserAgent(), "wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := h.memberRepo.UpdateLastLogin(member.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to record last login")
	}

	response, err := h.buildAuthResponse(member)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	h.auditService.LogLogin(member.ID, member.Email, c.ClientIP(), c.Request.UserAgent())

	h.logger.WithFields(logrus.Fields{
		"member_id": member.ID,
		"email":     member.Email,
	}).Info("Member signed in")

	c.JSON(http.StatusOK, response)
}

// RefreshToken rotates an access/refresh token pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	member, err := h.memberRepo.GetByID(claims.MemberID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member no longer exists"})
		return
	}

	if !member.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account has been deactivated"})
		return
	}

	response, err := h.buildAuthResponse(member)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens on refresh")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetProfile returns the authenticated member's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	member, err := h.memberRepo.GetByID(memberCtx.MemberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, member)
}

// UpdateProfile updates the authenticated member's display name
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.memberRepo.UpdateName(memberCtx.MemberID, req.Name); err != nil {
		h.logger.WithError(err).Error("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	member, err := h.memberRepo.GetByID(memberCtx.MemberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, member)
}

// ChangePassword changes the authenticated member's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	memberCtx := middleware.MustGetMemberContext(c)

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	member, err := h.memberRepo.GetByID(memberCtx.MemberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.bcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	if err := h.memberRepo.UpdatePassword(member.ID, string(hash)); err != nil {
		h.logger.WithError(err).Error("Failed to update password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) buildAuthResponse(member *models.Member) (*models.AuthResponse, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(member.ID, member.Email, string(member.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(member.ID, member.Email)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Member:       member,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    h.accessExpirySeconds,
	}, nil
}
