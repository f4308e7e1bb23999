package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medscan/internal/model"
)

// PatientSequenceName names the counter used for patient ids.
const PatientSequenceName = "patient"

// PatientRepository defines patient record persistence operations.
type PatientRepository interface {
	List(ctx context.Context) ([]model.PatientRecord, error)
	FindByID(ctx context.Context, id string) (*model.PatientRecord, error)
	// CreateWithNextID assigns the next sequential id to record and inserts it
	// in the same transaction.
	CreateWithNextID(ctx context.Context, record *model.PatientRecord) error
	DeleteByID(ctx context.Context, id string) (int64, error)
}

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository.
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

// List returns every record in intake order.
func (r *patientRepository) List(ctx context.Context) ([]model.PatientRecord, error) {
	var records []model.PatientRecord
	if err := r.db.WithContext(ctx).Order("pk").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID finds a record by its public id; gorm.ErrRecordNotFound when absent.
func (r *patientRepository) FindByID(ctx context.Context, id string) (*model.PatientRecord, error) {
	var record model.PatientRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *patientRepository) CreateWithNextID(ctx context.Context, record *model.PatientRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequenceValue(tx, PatientSequenceName)
		if err != nil {
			return err
		}
		record.ID = model.FormatPatientID(seq)
		return tx.Create(record).Error
	})
}

// DeleteByID removes the record with the given public id and reports how many rows went away.
func (r *patientRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PatientRecord{})
	return res.RowsAffected, res.Error
}

// nextSequenceValue increments the named counter and returns the new value.
// The UPDATE holds the row lock until the surrounding transaction ends.
func nextSequenceValue(tx *gorm.DB, name string) (int64, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PatientSequence{Name: name}).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&model.PatientSequence{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + ?", 1)).Error; err != nil {
		return 0, err
	}
	var seq model.PatientSequence
	if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
