package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medscan/internal/model"
)

func newAuditEcho(audit *MockAuditService, scans *MockScanService) *echo.Echo {
	e := newEcho()
	h := NewAuditHandler(audit, scans)
	e.GET("/logs", h.ListLogs)
	e.POST("/predict", h.RecordScan)
	return e
}

func sampleEntries() []model.AuditLogEntry {
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	return []model.AuditLogEntry{
		{Timestamp: at.Add(2 * time.Minute), Action: model.AuditActionSMS, Details: "Simulated SMS sent to +15550100"},
		{Timestamp: at.Add(time.Minute), Action: model.AuditActionCreate, Details: "Added Jane Doe"},
		{Timestamp: at, Action: model.AuditActionLogin, Details: "User admin logged in"},
	}
}

func TestAuditHandler_ListLogs(t *testing.T) {
	t.Run("all entries newest first", func(t *testing.T) {
		audit := new(MockAuditService)
		audit.On("List", mock.Anything).Return(sampleEntries(), nil)

		rec := serve(newAuditEcho(audit, new(MockScanService)), http.MethodGet, "/logs", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body []map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 3)
		assert.Equal(t, "SMS", body[0]["action"])
		assert.Equal(t, "LOGIN", body[2]["action"])
		assert.Len(t, body[0]["timestamp"], len(model.AuditTimestampLayout))
	})

	t.Run("filtered by action", func(t *testing.T) {
		audit := new(MockAuditService)
		audit.On("List", mock.Anything).Return(sampleEntries(), nil)

		rec := serve(newAuditEcho(audit, new(MockScanService)), http.MethodGet, "/logs?action=create", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body []map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "Added Jane Doe", body[0]["details"])
	})
}

func TestAuditHandler_RecordScan(t *testing.T) {
	scans := new(MockScanService)
	scans.On("RecordScan", mock.Anything, "Melanoma (87%)").Return("Logged")

	rec := serve(newAuditEcho(new(MockAuditService), scans), http.MethodPost, "/predict", `{"message":"Melanoma (87%)"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"Logged"}`, rec.Body.String())
	scans.AssertExpectations(t)
}
