package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/visitcare/visitation-backend/internal/models"
)

// VisitRouteRepository handles visit route database operations
type VisitRouteRepository struct {
	db DB
}

// NewVisitRouteRepository creates a new visit route repository
func NewVisitRouteRepository(db DB) *VisitRouteRepository {
	return &VisitRouteRepository{
		db: db,
	}
}

// Create creates a new visit route
func (r *VisitRouteRepository) Create(name string, hospitals []string) (*models.VisitRoute, error) {
	route := &models.VisitRoute{
		ID:        uuid.New().String(),
		Name:      name,
		Hospitals: hospitals,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO visit_routes (id, name, hospitals, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		route.ID,
		route.Name,
		pq.Array([]string(route.Hospitals)),
		route.Active,
		route.CreatedAt,
		route.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return route, nil
}

// GetByID fetches a route by ID
func (r *VisitRouteRepository) GetByID(id string) (*models.VisitRoute, error) {
	var route models.VisitRoute
	query := `SELECT * FROM visit_routes WHERE id = $1`

	err := r.db.Get(&route, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("route not found")
		}
		return nil, fmt.Errorf("failed to fetch route: %w", err)
	}

	return &route, nil
}

// ListRoutes returns all routes ordered by name
func (r *VisitRouteRepository) ListRoutes() ([]models.VisitRoute, error) {
	routes := []models.VisitRoute{}
	query := `SELECT * FROM visit_routes ORDER BY name ASC`

	err := r.db.Select(&routes, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	return routes, nil
}

// ListActiveRoutes returns all active routes ordered by name
func (r *VisitRouteRepository) ListActiveRoutes() ([]models.VisitRoute, error) {
	routes := []models.VisitRoute{}
	query := `SELECT * FROM visit_routes WHERE active = true ORDER BY name ASC`

	err := r.db.Select(&routes, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active routes: %w", err)
	}

	return routes, nil
}

// Update updates a route's name, hospitals, and active flag
func (r *VisitRouteRepository) Update(route *models.VisitRoute) error {
	query := `
		UPDATE visit_routes
		SET name = $1, hospitals = $2, active = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(
		query,
		route.Name,
		pq.Array([]string(route.Hospitals)),
		route.Active,
		time.Now(),
		route.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update route: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("route not found")
	}

	return nil
}

// Deactivate soft-deletes a route. Routes are never hard-deleted while
// historical slots reference them.
func (r *VisitRouteRepository) Deactivate(id string) error {
	query := `UPDATE visit_routes SET active = false, updated_at = $1 WHERE id = $2`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate route: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("route not found")
	}

	return nil
}
