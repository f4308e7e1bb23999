package model

import (
	"fmt"
	"time"
)

const (
	// PatientIDBase is added to the sequence value to build the public patient id.
	PatientIDBase = 1000
	// PatientDateLayout is the calendar-day layout of PatientRecord.Date.
	PatientDateLayout = "2006-01-02"
)

// PatientRecord is a single intake entry with diagnosis and contact metadata.
type PatientRecord struct {
	PK    uint   `json:"-" gorm:"primaryKey"`
	ID    string `json:"id" gorm:"uniqueIndex;size:32;not null"`
	Name  string `json:"name" gorm:"size:255;not null"`
	Diag  string `json:"diag" gorm:"type:text;not null"`
	Email string `json:"email" gorm:"size:255"`
	Date  string `json:"date" gorm:"size:10;not null;index"`
}

// TableName keeps the table name short and stable.
func (PatientRecord) TableName() string {
	return "patients"
}

// FormatPatientID renders a sequence value as a public id such as "P-1001".
func FormatPatientID(seq int64) string {
	return fmt.Sprintf("P-%d", PatientIDBase+seq)
}

// FormatPatientDate renders t at calendar-day granularity.
func FormatPatientDate(t time.Time) string {
	return t.Format(PatientDateLayout)
}

// PatientSequence is a named monotonically increasing counter.
type PatientSequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}
