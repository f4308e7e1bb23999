package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/auth"
	"medscan/internal/cache"
	apperrors "medscan/internal/errors"
	"medscan/internal/model"
	"medscan/internal/repository"
)

func newTestCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func newCachedPatientService(t *testing.T) (PatientService, repository.PatientRepository, *miniredis.Miniredis) {
	t.Helper()
	gormDB := setupDB(t)
	client, mr := newTestCache(t)
	audit, _ := newTestAudit(gormDB)
	repo := repository.NewPatientRepository(gormDB)
	return NewPatientService(repo, audit, client), repo, mr
}

func TestPatientService_FindServedFromCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, mr := newCachedPatientService(t)

	created, err := svc.Create(ctx, "Jane Doe", "Melanoma", "jane@example.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("medscan:patient:P-1001"))

	// Remove the row behind the cache's back; the cached copy still answers.
	rows, err := repo.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	found, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", found.Name)
	assert.Equal(t, "Melanoma", found.Diag)
	assert.Equal(t, "jane@example.com", found.Email)
}

func TestPatientService_FindReadsThrough(t *testing.T) {
	ctx := context.Background()
	svc, repo, mr := newCachedPatientService(t)

	record := &model.PatientRecord{Name: "John Roe", Diag: "Nevus", Date: "2026-10-15"}
	require.NoError(t, repo.CreateWithNextID(ctx, record))
	assert.False(t, mr.Exists("medscan:patient:P-1001"))

	found, err := svc.FindByID(ctx, "P-1001")
	require.NoError(t, err)
	assert.Equal(t, "John Roe", found.Name)
	assert.True(t, mr.Exists("medscan:patient:P-1001"))
	assert.Equal(t, patientCacheTTL, mr.TTL("medscan:patient:P-1001"))
}

func TestPatientService_DeleteThenFindWithCache(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCachedPatientService(t)

	created, err := svc.Create(ctx, "Jane Doe", "Melanoma", "")
	require.NoError(t, err)
	_, err = svc.FindByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPatientNotFound)
}

func TestPatientService_LateCacheFillAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCachedPatientService(t)

	created, err := svc.Create(ctx, "Jane Doe", "Melanoma", "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	// A lookup that read the row before the delete finishes afterwards.
	svc.(*patientService).cacheLoaded(ctx, created)

	_, err = svc.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPatientNotFound)
}

func TestAuthService_RefreshFlowWithRedis(t *testing.T) {
	ctx := context.Background()
	gormDB := setupDB(t)
	client, _ := newTestCache(t)
	audit, _ := newTestAudit(gormDB)
	svc := NewAuthService(
		repository.NewUserRepository(gormDB),
		audit,
		auth.NewJWTService("test-secret"),
		auth.NewTokenStore(client),
		DefaultBootstrapAccount,
	)
	_, err := svc.Bootstrap(ctx)
	require.NoError(t, err)

	login, err := svc.Login(ctx, "admin", "1234")
	require.NoError(t, err)

	access, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestNotificationService_DeletedPatientNotServedFromCache(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCachedPatientService(t)
	_, audit := newSQLitePatientService(t)

	created, err := svc.Create(ctx, "Jane Doe", "Melanoma", "")
	require.NoError(t, err)
	_, err = svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	notifications := NewNotificationService(svc, audit, nil, nil, nil, "reports@medscan.example", zerolog.Nop())
	_, err = notifications.SendSMS(ctx, created.ID, "+15550100")
	assert.ErrorIs(t, err, apperrors.ErrPatientNotFound)
}
