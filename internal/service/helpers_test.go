package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medscan/internal/db"
	"medscan/internal/model"
	"medscan/internal/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func newTestAudit(gormDB *gorm.DB) (AuditService, repository.AuditLogRepository) {
	repo := repository.NewAuditLogRepository(gormDB)
	clock := steppingClock(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	return NewAuditService(repo, zerolog.Nop(), WithAuditClock(clock)), repo
}

// MockAuditService records appends.
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
