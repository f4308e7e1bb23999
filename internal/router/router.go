package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"medscan/internal/auth"
	"medscan/internal/config"
	"medscan/internal/errors"
	"medscan/internal/handler"
	"medscan/internal/logger"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth         *handler.AuthHandler
	Patient      *handler.PatientHandler
	Notification *handler.NotificationHandler
	Audit        *handler.AuditHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log zerolog.Logger, gatherer prometheus.Gatherer, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/login", h.Auth.Login)
	e.POST("/register", h.Auth.Register)
	e.POST("/auth/refresh", h.Auth.Refresh)
	e.POST("/auth/logout", h.Auth.Logout)

	secured := e.Group("")
	if cfg.Auth.Required {
		secured.Use(echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.Auth.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(auth.Claims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{Error: "missing or invalid access token"})
			},
		}))
	}

	secured.GET("/patients", h.Patient.ListPatients)
	secured.POST("/patients", h.Patient.CreatePatient)
	secured.DELETE("/patients/:id", h.Patient.DeletePatient)

	secured.POST("/sms/:patientId", h.Notification.SendSMS)
	secured.POST("/email/:patientId", h.Notification.SendEmail)

	secured.POST("/predict", h.Audit.RecordScan)
	secured.GET("/logs", h.Audit.ListLogs)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
