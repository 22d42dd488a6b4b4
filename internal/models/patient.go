package models

import "time"

// Patient represents a patient record tracked per hospital
type Patient struct {
	ID        string    `json:"id" db:"id"`
	Hospital  string    `json:"hospital" db:"hospital"`
	Name      string    `json:"name" db:"name"`
	Ward      *string   `json:"ward,omitempty" db:"ward"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePatientRequest is the payload for adding a patient record
type CreatePatientRequest struct {
	Hospital string  `json:"hospital" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Ward     *string `json:"ward,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// UpdatePatientRequest is the payload for updating a patient record
type UpdatePatientRequest struct {
	Hospital *string `json:"hospital,omitempty"`
	Name     *string `json:"name,omitempty"`
	Ward     *string `json:"ward,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}
