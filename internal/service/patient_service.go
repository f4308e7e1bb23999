package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"medscan/internal/cache"
	apperrors "medscan/internal/errors"
	"medscan/internal/model"
	"medscan/internal/repository"
)

const patientCacheTTL = 5 * time.Minute

// PatientService handles patient record operations.
type PatientService interface {
	List(ctx context.Context) ([]model.PatientRecord, error)
	Create(ctx context.Context, name, diag, email string) (*model.PatientRecord, error)
	// Delete removes a record; deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// FindByID returns ErrPatientNotFound when no record matches.
	FindByID(ctx context.Context, id string) (*model.PatientRecord, error)
}

type patientService struct {
	repo  repository.PatientRepository
	audit AuditService
	cache *cache.Client
	now   func() time.Time
}

// NewPatientService creates a new patient service. cache may be nil.
func NewPatientService(repo repository.PatientRepository, audit AuditService, cache *cache.Client) PatientService {
	return &patientService{
		repo:  repo,
		audit: audit,
		cache: cache,
		now:   time.Now,
	}
}

// cachedPatient is the cache value for a patient id. A deleted id keeps a
// tombstone for the TTL so a lookup that raced the delete cannot re-cache it.
type cachedPatient struct {
	Deleted bool                 `json:"deleted,omitempty"`
	Record  *model.PatientRecord `json:"record,omitempty"`
}

func (s *patientService) cacheKey(id string) string {
	return fmt.Sprintf("medscan:patient:%s", id)
}

// cacheLoaded stores a record read from the repository unless the key was
// written since, e.g. by a concurrent Delete.
func (s *patientService) cacheLoaded(ctx context.Context, record *model.PatientRecord) {
	s.cache.SetJSONIfAbsent(ctx, s.cacheKey(record.ID), cachedPatient{Record: record}, patientCacheTTL)
}

func (s *patientService) List(ctx context.Context) ([]model.PatientRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistenceError("list patients", err)
	}
	if records == nil {
		records = []model.PatientRecord{}
	}
	return records, nil
}

func (s *patientService) Create(ctx context.Context, name, diag, email string) (*model.PatientRecord, error) {
	record := &model.PatientRecord{
		Name:  name,
		Diag:  diag,
		Email: email,
		Date:  model.FormatPatientDate(s.now()),
	}
	if err := s.repo.CreateWithNextID(ctx, record); err != nil {
		return nil, persistenceError("create patient", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(record.ID), cachedPatient{Record: record}, patientCacheTTL)
	s.audit.Append(ctx, model.AuditActionCreate, fmt.Sprintf("Added %s", name))
	return record, nil
}

func (s *patientService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.DeleteByID(ctx, id); err != nil {
		return persistenceError("delete patient", err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), cachedPatient{Deleted: true}, patientCacheTTL)
	s.audit.Append(ctx, model.AuditActionDelete, fmt.Sprintf("Deleted %s", id))
	return nil
}

func (s *patientService) FindByID(ctx context.Context, id string) (*model.PatientRecord, error) {
	var cached cachedPatient
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		if cached.Deleted {
			return nil, apperrors.ErrPatientNotFound
		}
		if cached.Record != nil {
			return cached.Record, nil
		}
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPatientNotFound
		}
		return nil, persistenceError("find patient", err)
	}

	s.cacheLoaded(ctx, record)
	return record, nil
}
