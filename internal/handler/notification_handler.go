package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medscan/internal/service"
)

// NotificationHandler handles SMS and emailed report endpoints.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// SMSRequest represents an SMS notification request.
type SMSRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// EmailRequest represents an emailed report request.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendSMS godoc
// @Summary Notify a patient by SMS
// @Description Without Twilio credentials the message is simulated and only audited.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Param request body SMSRequest true "Destination phone"
// @Success 200 {object} service.Result
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /sms/{patientId} [post]
func (h *NotificationHandler) SendSMS(c echo.Context) error {
	var req SMSRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.notificationService.SendSMS(c.Request().Context(), c.Param("patientId"), req.Phone)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// SendEmail godoc
// @Summary Email a patient's PDF report
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Param request body EmailRequest true "Recipient address"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /email/{patientId} [post]
func (h *NotificationHandler) SendEmail(c echo.Context) error {
	var req EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.notificationService.SendEmail(c.Request().Context(), c.Param("patientId"), req.Email)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: res.Message})
}
