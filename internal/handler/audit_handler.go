package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"medscan/internal/model"
	"medscan/internal/service"
)

// AuditHandler exposes the audit log and records scan results.
type AuditHandler struct {
	auditService service.AuditService
	scanService  service.ScanService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService service.AuditService, scanService service.ScanService) *AuditHandler {
	return &AuditHandler{auditService: auditService, scanService: scanService}
}

// ScanRequest carries a classification result from the client.
type ScanRequest struct {
	Message string `json:"message" validate:"required"`
}

// ScanResponse acknowledges a recorded scan.
type ScanResponse struct {
	Reply string `json:"reply"`
}

// ListLogs godoc
// @Summary List audit log entries, newest first
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param action query string false "Only entries with this action (LOGIN, CREATE, DELETE, SMS, EMAIL, AI_SCAN)"
// @Success 200 {array} model.AuditLogEntry
// @Failure 500 {object} errors.ErrorResponse
// @Router /logs [get]
func (h *AuditHandler) ListLogs(c echo.Context) error {
	entries, err := h.auditService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}

	if action := c.QueryParam("action"); action != "" {
		entries = lo.Filter(entries, func(e model.AuditLogEntry, _ int) bool {
			return strings.EqualFold(string(e.Action), action)
		})
	}
	return c.JSON(http.StatusOK, entries)
}

// RecordScan godoc
// @Summary Record an AI scan result
// @Tags audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScanRequest true "Scan result"
// @Success 200 {object} ScanResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /predict [post]
func (h *AuditHandler) RecordScan(c echo.Context) error {
	var req ScanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply := h.scanService.RecordScan(c.Request().Context(), req.Message)
	return c.JSON(http.StatusOK, ScanResponse{Reply: reply})
}
