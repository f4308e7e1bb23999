package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "medscan/internal/errors"
	"medscan/internal/service"
)

func newNotificationEcho(svc *MockNotificationService) *echo.Echo {
	e := newEcho()
	h := NewNotificationHandler(svc)
	e.POST("/sms/:patientId", h.SendSMS)
	e.POST("/email/:patientId", h.SendEmail)
	return e
}

func TestNotificationHandler_SendSMS(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockNotificationService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "simulated",
			body: `{"phone":"+15550100"}`,
			setupMock: func(m *MockNotificationService) {
				m.On("SendSMS", mock.Anything, "P-1001", "+15550100").Return(&service.Result{
					Message:   "Simulation SMS Sent (Configure Twilio for real SMS)",
					Simulated: true,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Simulation SMS Sent (Configure Twilio for real SMS)","simulated":true}`,
		},
		{
			name: "unknown patient",
			body: `{"phone":"+15550100"}`,
			setupMock: func(m *MockNotificationService) {
				m.On("SendSMS", mock.Anything, "P-1001", "+15550100").Return(nil, apperrors.ErrPatientNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"patient not found"}`,
		},
		{
			name: "transport failure",
			body: `{"phone":"+15550100"}`,
			setupMock: func(m *MockNotificationService) {
				m.On("SendSMS", mock.Anything, "P-1001", "+15550100").
					Return(nil, fmt.Errorf("%w: 401 unauthorized", apperrors.ErrTransport))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"notification transport error: 401 unauthorized"}`,
		},
		{
			name:           "missing phone",
			body:           `{}`,
			setupMock:      func(m *MockNotificationService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockNotificationService)
			tt.setupMock(svc)

			rec := serve(newNotificationEcho(svc), http.MethodPost, "/sms/P-1001", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestNotificationHandler_SendEmail(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		svc := new(MockNotificationService)
		svc.On("SendEmail", mock.Anything, "P-1001", "jane@example.com").
			Return(&service.Result{Message: "Email Sent Successfully!"}, nil)

		rec := serve(newNotificationEcho(svc), http.MethodPost, "/email/P-1001", `{"email":"jane@example.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Email Sent Successfully!"}`, rec.Body.String())
	})

	t.Run("pipeline failure", func(t *testing.T) {
		svc := new(MockNotificationService)
		svc.On("SendEmail", mock.Anything, "P-1001", "jane@example.com").Return(nil, &service.PipelineError{
			Stage: service.StageMessageComposed,
			Err:   fmt.Errorf("%w: 535 authentication failed", apperrors.ErrTransport),
		})

		rec := serve(newNotificationEcho(svc), http.MethodPost, "/email/P-1001", `{"email":"jane@example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"notification transport error: 535 authentication failed"}`, rec.Body.String())
	})

	t.Run("unknown patient", func(t *testing.T) {
		svc := new(MockNotificationService)
		svc.On("SendEmail", mock.Anything, "P-9999", "jane@example.com").Return(nil, &service.PipelineError{
			Stage: service.StageStart,
			Err:   apperrors.ErrPatientNotFound,
		})

		rec := serve(newNotificationEcho(svc), http.MethodPost, "/email/P-9999", `{"email":"jane@example.com"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid address", func(t *testing.T) {
		svc := new(MockNotificationService)

		rec := serve(newNotificationEcho(svc), http.MethodPost, "/email/P-1001", `{"email":"not-an-address"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}
