// Package report renders the single-page diagnostic report sent to patients.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	apperrors "medscan/internal/errors"
	"medscan/internal/model"
)

const (
	// ContentType is the MIME type of rendered reports.
	ContentType = "application/pdf"

	title      = "MedScan Pro - Diagnostic Report"
	separator  = "------------------------------------------------"
	disclaimer = "This is an automated report generated by the MedScan Pro AI System. " +
		"Please consult a dermatologist for confirmation."

	cellWidth  = 200
	lineHeight = 10
)

// Document is a rendered report held in memory.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Generator renders patient records into PDF documents.
type Generator struct{}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// FileName is the attachment name of the patient's report.
func FileName(patient *model.PatientRecord) string {
	return fmt.Sprintf("Report_%s.pdf", patient.ID)
}

// Render lays out the report for patient. Output depends only on the record,
// so two renders of the same record are byte-identical. Text that the core
// font encoding (Windows-1252) cannot represent fails with ErrRender.
func (g *Generator) Render(patient *model.PatientRecord) (*Document, error) {
	if patient == nil {
		return nil, fmt.Errorf("%w: no patient", apperrors.ErrRender)
	}

	lines := []string{
		fmt.Sprintf("Patient ID: %s", patient.ID),
		fmt.Sprintf("Patient Name: %s", patient.Name),
		fmt.Sprintf("Diagnosis: %s", patient.Diag),
		fmt.Sprintf("Date: %s", patient.Date),
	}
	encoded := make([]string, len(lines))
	for i, line := range lines {
		s, err := encode(line)
		if err != nil {
			return nil, err
		}
		encoded[i] = s
	}

	stamp := documentTime(patient)
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(title, true)
	pdf.SetCreator("MedScan Pro", true)

	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(cellWidth, lineHeight, title, "", 1, "C", false, 0, "")
	pdf.CellFormat(cellWidth, lineHeight, separator, "", 1, "C", false, 0, "")
	for _, line := range encoded {
		pdf.CellFormat(cellWidth, lineHeight, line, "", 1, "", false, 0, "")
	}
	pdf.CellFormat(cellWidth, lineHeight, separator, "", 1, "C", false, 0, "")
	pdf.MultiCell(0, lineHeight, disclaimer, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRender, err)
	}

	return &Document{
		Name:        FileName(patient),
		ContentType: ContentType,
		Data:        buf.Bytes(),
	}, nil
}

// encode converts UTF-8 text into the single-byte encoding of the core fonts.
func encode(s string) (string, error) {
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q cannot be encoded in the report font", apperrors.ErrRender, s)
	}
	return out, nil
}

// documentTime pins the PDF metadata dates to the record's intake day.
func documentTime(patient *model.PatientRecord) time.Time {
	if t, err := time.Parse(model.PatientDateLayout, patient.Date); err == nil {
		return t
	}
	return time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
}
