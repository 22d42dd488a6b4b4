package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/models"
)

// RouteHandler handles visit route HTTP requests
type RouteHandler struct {
	routeRepo *database.VisitRouteRepository
	logger    *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeRepo *database.VisitRouteRepository, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routeRepo: routeRepo,
		logger:    logger,
	}
}

// ListRoutes returns all visit routes. Pass active=true for active routes only.
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	var (
		routes []models.VisitRoute
		err    error
	)

	if c.Query("active") == "true" {
		routes, err = h.routeRepo.ListActiveRoutes()
	} else {
		routes, err = h.routeRepo.ListRoutes()
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list routes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list routes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

// GetRoute returns a single route by ID
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeRepo.GetByID(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch route"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// CreateRoute creates a new visit route (admin only)
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	route, err := h.routeRepo.Create(req.Name, req.Hospitals)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"route_id": route.ID,
		"name":     route.Name,
	}).Info("Route created")

	c.JSON(http.StatusCreated, route)
}

// UpdateRoute updates a route's name, hospital list, or active flag (admin only)
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	route, err := h.routeRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var req models.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.Hospitals != nil {
		route.Hospitals = req.Hospitals
	}
	if req.Active != nil {
		route.Active = *req.Active
	}

	if err := h.routeRepo.Update(route); err != nil {
		h.logger.WithError(err).Error("Failed to update route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update route"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// DeactivateRoute soft-deletes a route (admin only). Historical slots keep
// referencing it, so routes are never hard-deleted.
func (h *RouteHandler) DeactivateRoute(c *gin.Context) {
	if err := h.routeRepo.Deactivate(c.Param("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to deactivate route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate route"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deactivated"})
}
