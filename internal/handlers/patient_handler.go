package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/models"
)

// PatientHandler handles patient registry HTTP requests
type PatientHandler struct {
	patientRepo *database.PatientRepository
	logger      *logrus.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientRepo *database.PatientRepository, logger *logrus.Logger) *PatientHandler {
	return &PatientHandler{
		patientRepo: patientRepo,
		logger:      logger,
	}
}

// ListPatients returns patient records. Pass hospital=<name> to filter to
// active patients at one hospital, which is what visiting teams use.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	var (
		patients []models.Patient
		err      error
	)

	if hospital := c.Query("hospital"); hospital != "" {
		patients, err = h.patientRepo.ListByHospital(hospital)
	} else {
		patients, err = h.patientRepo.ListPatients()
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list patients")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list patients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"patients": patients, "count": len(patients)})
}

// GetPatient returns a single patient record
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patient, err := h.patientRepo.GetByID(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch patient")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patient"})
		return
	}

	c.JSON(http.StatusOK, patient)
}

// CreatePatient adds a patient record (admin only)
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req models.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	patient, err := h.patientRepo.Create(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create patient")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create patient"})
		return
	}

	c.JSON(http.StatusCreated, patient)
}

// UpdatePatient updates a patient record (admin only)
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patient, err := h.patientRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var req models.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Hospital != nil {
		patient.Hospital = *req.Hospital
	}
	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Ward != nil {
		patient.Ward = req.Ward
	}
	if req.Notes != nil {
		patient.Notes = req.Notes
	}
	if req.Active != nil {
		patient.Active = *req.Active
	}

	if err := h.patientRepo.Update(patient); err != nil {
		h.logger.WithError(err).Error("Failed to update patient")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update patient"})
		return
	}

	c.JSON(http.StatusOK, patient)
}

// DeletePatient removes a patient record (admin only)
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	if err := h.patientRepo.Delete(c.Param("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete patient")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete patient"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted"})
}
