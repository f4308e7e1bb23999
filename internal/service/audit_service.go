package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"medscan/internal/metrics"
	"medscan/internal/model"
	"medscan/internal/repository"
)

// MaxAuditEntries is the retention cap of the audit log.
const MaxAuditEntries = 50

// AuditPublisher receives a copy of every stored audit entry.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, entry model.AuditLogEntry) error
}

// AuditService appends to and lists the bounded audit log.
type AuditService interface {
	// Append never fails from the caller's point of view; storage problems
	// are logged and counted instead.
	Append(ctx context.Context, action model.AuditAction, details string)
	// List returns entries newest first.
	List(ctx context.Context) ([]model.AuditLogEntry, error)
}

type auditService struct {
	repo      repository.AuditLogRepository
	publisher AuditPublisher
	logger    zerolog.Logger
	now       func() time.Time
	max       int
}

// AuditOption customizes the audit service.
type AuditOption func(*auditService)

// WithAuditPublisher forwards stored entries to p.
func WithAuditPublisher(p AuditPublisher) AuditOption {
	return func(s *auditService) { s.publisher = p }
}

// WithAuditClock overrides the time source.
func WithAuditClock(now func() time.Time) AuditOption {
	return func(s *auditService) { s.now = now }
}

// NewAuditService creates a new audit service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger, opts ...AuditOption) AuditService {
	s := &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit").Logger(),
		now:    time.Now,
		max:    MaxAuditEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *auditService) Append(ctx context.Context, action model.AuditAction, details string) {
	// The primary operation already succeeded; a client hang-up must not drop its entry.
	ctx = context.WithoutCancel(ctx)

	entry := model.AuditLogEntry{
		Timestamp: s.now().UTC().Truncate(time.Second),
		Action:    action,
		Details:   details,
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		metrics.AuditEntries.WithLabelValues(string(action), metrics.OutcomeFailed).Inc()
		s.logger.Error().Err(err).Str("action", string(action)).Str("details", details).Msg("audit append failed")
		return
	}
	metrics.AuditEntries.WithLabelValues(string(action), metrics.OutcomeStored).Inc()

	s.trim(ctx)

	if s.publisher != nil {
		if err := s.publisher.PublishAudit(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("action", string(action)).Msg("audit publish failed")
		}
	}
}

// trim evicts the oldest entries beyond the cap. Concurrent appends may both
// see an over-full log; the surplus is recomputed on every append.
func (s *auditService) trim(ctx context.Context) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("audit count failed")
		return
	}
	if surplus := int(count) - s.max; surplus > 0 {
		if err := s.repo.DeleteOldest(ctx, surplus); err != nil {
			s.logger.Error().Err(err).Int("surplus", surplus).Msg("audit trim failed")
		}
	}
}

func (s *auditService) List(ctx context.Context) ([]model.AuditLogEntry, error) {
	entries, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, persistenceError("list audit log", err)
	}
	return entries, nil
}
