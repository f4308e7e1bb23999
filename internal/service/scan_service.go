package service

import (
	"context"
	"fmt"

	"medscan/internal/model"
)

// ScanService records image classification results produced by the client.
type ScanService interface {
	RecordScan(ctx context.Context, message string) string
}

type scanService struct {
	audit AuditService
}

// NewScanService creates a new scan service.
func NewScanService(audit AuditService) ScanService {
	return &scanService{audit: audit}
}

// RecordScan only logs the result; classification happens in the front end.
func (s *scanService) RecordScan(ctx context.Context, message string) string {
	s.audit.Append(ctx, model.AuditActionAIScan, fmt.Sprintf("Detected %s", message))
	return "Logged"
}
