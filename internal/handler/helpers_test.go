package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"medscan/internal/model"
	"medscan/internal/service"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// serve routes a single request through e and returns the recorded response.
func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Bootstrap(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, username, password, role string) (*model.User, error) {
	args := m.Called(ctx, username, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) List(ctx context.Context) ([]model.PatientRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PatientRecord), args.Error(1)
}

func (m *MockPatientService) Create(ctx context.Context, name, diag, email string) (*model.PatientRecord, error) {
	args := m.Called(ctx, name, diag, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PatientRecord), args.Error(1)
}

func (m *MockPatientService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPatientService) FindByID(ctx context.Context, id string) (*model.PatientRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PatientRecord), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendSMS(ctx context.Context, patientID, phone string) (*service.Result, error) {
	args := m.Called(ctx, patientID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Result), args.Error(1)
}

func (m *MockNotificationService) SendEmail(ctx context.Context, patientID, recipient string) (*service.Result, error) {
	args := m.Called(ctx, patientID, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Result), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Append(ctx context.Context, action model.AuditAction, details string) {
	m.Called(ctx, action, details)
}

func (m *MockAuditService) List(ctx context.Context) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) RecordScan(ctx context.Context, message string) string {
	return m.Called(ctx, message).String(0)
}
