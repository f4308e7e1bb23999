package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medscan/internal/model"
	"medscan/internal/service"
)

// PatientHandler handles patient record endpoints.
type PatientHandler struct {
	patientService service.PatientService
}

// NewPatientHandler creates a new patient handler.
func NewPatientHandler(patientService service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// CreatePatientRequest represents a new patient intake.
type CreatePatientRequest struct {
	Name  string `json:"name" validate:"required"`
	Diag  string `json:"diag" validate:"required"`
	Email string `json:"email"`
}

// SavedPatientResponse is returned after a patient is stored.
type SavedPatientResponse struct {
	Message string               `json:"message"`
	Patient *model.PatientRecord `json:"patient"`
}

// ListPatients godoc
// @Summary List patient records
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PatientRecord
// @Failure 500 {object} errors.ErrorResponse
// @Router /patients [get]
func (h *PatientHandler) ListPatients(c echo.Context) error {
	patients, err := h.patientService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, patients)
}

// CreatePatient godoc
// @Summary Add a patient record
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePatientRequest true "Patient data"
// @Success 200 {object} SavedPatientResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /patients [post]
func (h *PatientHandler) CreatePatient(c echo.Context) error {
	var req CreatePatientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patient, err := h.patientService.Create(c.Request().Context(), req.Name, req.Diag, req.Email)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, SavedPatientResponse{Message: "Saved", Patient: patient})
}

// DeletePatient godoc
// @Summary Delete a patient record
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 200 {object} MessageResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /patients/{id} [delete]
func (h *PatientHandler) DeletePatient(c echo.Context) error {
	if err := h.patientService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Deleted"})
}
