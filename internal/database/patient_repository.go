package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visitcare/visitation-backend/internal/models"
)

// PatientRepository handles patient registry database operations
type PatientRepository struct {
	db DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db DB) *PatientRepository {
	return &PatientRepository{
		db: db,
	}
}

// Create adds a patient record
func (r *PatientRepository) Create(req *models.CreatePatientRequest) (*models.Patient, error) {
	patient := &models.Patient{
		ID:        uuid.New().String(),
		Hospital:  req.Hospital,
		Name:      req.Name,
		Ward:      req.Ward,
		Notes:     req.Notes,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO patients (id, hospital, name, ward, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		patient.ID,
		patient.Hospital,
		patient.Name,
		patient.Ward,
		patient.Notes,
		patient.Active,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	return patient, nil
}

// GetByID fetches a patient by ID
func (r *PatientRepository) GetByID(id string) (*models.Patient, error) {
	var patient models.Patient
	query := `SELECT * FROM patients WHERE id = $1`

	err := r.db.Get(&patient, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found")
		}
		return nil, fmt.Errorf("failed to fetch patient: %w", err)
	}

	return &patient, nil
}

// ListByHospital returns active patients for a hospital
func (r *PatientRepository) ListByHospital(hospital string) ([]models.Patient, error) {
	patients := []models.Patient{}
	query := `SELECT * FROM patients WHERE hospital = $1 AND active = true ORDER BY name ASC`

	err := r.db.Select(&patients, query, hospital)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return patients, nil
}

// ListPatients returns all patients ordered by hospital then name
func (r *PatientRepository) ListPatients() ([]models.Patient, error) {
	patients := []models.Patient{}
	query := `SELECT * FROM patients ORDER BY hospital ASC, name ASC`

	err := r.db.Select(&patients, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return patients, nil
}

// Update updates a patient record
func (r *PatientRepository) Update(patient *models.Patient) error {
	query := `
		UPDATE patients
		SET hospital = $1, name = $2, ward = $3, notes = $4, active = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(
		query,
		patient.Hospital,
		patient.Name,
		patient.Ward,
		patient.Notes,
		patient.Active,
		time.Now(),
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}

	return nil
}

// Delete removes a patient record
func (r *PatientRepository) Delete(id string) error {
	query := `DELETE FROM patients WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}

	return nil
}
