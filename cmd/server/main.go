package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"medscan/docs"
	"medscan/internal/archive"
	"medscan/internal/auth"
	"medscan/internal/cache"
	"medscan/internal/config"
	"medscan/internal/db"
	"medscan/internal/events"
	"medscan/internal/handler"
	"medscan/internal/logger"
	"medscan/internal/metrics"
	"medscan/internal/notify"
	"medscan/internal/report"
	"medscan/internal/repository"
	"medscan/internal/router"
	"medscan/internal/service"
)

// @title MedScan Pro API
// @version 1.0
// @description Clinical record backend: staff accounts, patient intake, PDF reports, SMS and email notifications, audit log.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	rootCmd := &cobra.Command{
		Use:          "medscan",
		Short:        "MedScan Pro clinical record server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(bootstrapCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := openDatabase(cfg); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
			return nil
		},
	}
}

func bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Migrate and create the default account when no user exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			gormDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			audit := service.NewAuditService(repository.NewAuditLogRepository(gormDB), log)
			authService := newAuthService(cfg, gormDB, audit, nil)
			created, err := authService.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Bool("created", created).Str("username", cfg.Bootstrap.Username).Msg("bootstrap complete")
			return nil
		},
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.IsDevelopment()), nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return gormDB, nil
}

func newAuthService(cfg *config.Config, gormDB *gorm.DB, audit service.AuditService, cacheClient *cache.Client) service.AuthService {
	return service.NewAuthService(
		repository.NewUserRepository(gormDB),
		audit,
		auth.NewJWTService(cfg.Auth.JWTSecret),
		auth.NewTokenStore(cacheClient),
		service.BootstrapAccount{
			Username: cfg.Bootstrap.Username,
			Password: cfg.Bootstrap.Password,
			Role:     cfg.Bootstrap.Role,
		},
	)
}

func runServer() error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, caching and refresh tokens disabled")
	}

	var auditOpts []service.AuditOption
	if publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, log); publisher != nil {
		defer publisher.Close()
		auditOpts = append(auditOpts, service.WithAuditPublisher(publisher))
		log.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).Msg("audit events enabled")
	}
	audit := service.NewAuditService(repository.NewAuditLogRepository(gormDB), log, auditOpts...)

	authService := newAuthService(cfg, gormDB, audit, cacheClient)
	if created, err := authService.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	} else if created {
		log.Info().Str("username", cfg.Bootstrap.Username).Msg("default account created")
	}

	patientService := service.NewPatientService(repository.NewPatientRepository(gormDB), audit, cacheClient)

	mailFrom := cfg.Mail.From
	if mailFrom == "" {
		mailFrom = cfg.Mail.Username
	}
	mailTransport := notify.NewSMTPTransport(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Timeout:  cfg.Mail.Timeout,
	})

	var smsTransport notify.SMSTransport
	if cfg.SMSConfigured() {
		smsTransport = notify.NewTwilioTransport(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.From, cfg.SMS.Timeout)
	} else {
		log.Warn().Msg("twilio credentials not configured, SMS runs in simulation mode")
	}

	var notifyOpts []service.NotificationOption
	reportArchive, err := archive.New(ctx, archive.Options{
		Bucket:    cfg.Archive.Bucket,
		QueueName: cfg.Archive.QueueName,
		Region:    cfg.Archive.Region,
		Endpoint:  cfg.Archive.Endpoint,
	})
	if err != nil {
		log.Warn().Err(err).Msg("report archive disabled")
	} else if reportArchive != nil {
		notifyOpts = append(notifyOpts, service.WithReportArchive(reportArchive))
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("report archive enabled")
	}

	notificationService := service.NewNotificationService(
		patientService,
		audit,
		report.NewGenerator(),
		mailTransport,
		smsTransport,
		mailFrom,
		log,
		notifyOpts...,
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	if cfg.Swagger.Host != "" {
		docs.SwaggerInfo.Host = cfg.Swagger.Host
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, log, prometheus.DefaultGatherer, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Patient:      handler.NewPatientHandler(patientService),
		Notification: handler.NewNotificationHandler(notificationService),
		Audit:        handler.NewAuditHandler(audit, service.NewScanService(audit)),
	})

	go func() {
		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Str("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
