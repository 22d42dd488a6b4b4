package models

import (
	"time"

	"github.com/lib/pq"
)

// VisitRoute represents a named, recurring group of hospitals visited
// by a two-person team on any given date
type VisitRoute struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Hospitals pq.StringArray `json:"hospitals" db:"hospitals"`
	Active    bool           `json:"active" db:"active"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// HospitalCount returns the number of hospitals on the route
func (r *VisitRoute) HospitalCount() int {
	return len(r.Hospitals)
}

// CreateRouteRequest is the payload for creating a visit route
type CreateRouteRequest struct {
	Name      string   `json:"name" binding:"required,min=2"`
	Hospitals []string `json:"hospitals" binding:"required,min=1"`
}

// UpdateRouteRequest is the payload for updating a visit route
type UpdateRouteRequest struct {
	Name      *string  `json:"name,omitempty" binding:"omitempty,min=2"`
	Hospitals []string `json:"hospitals,omitempty"`
	Active    *bool    `json:"active,omitempty"`
}
