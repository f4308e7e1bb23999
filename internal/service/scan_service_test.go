package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"medscan/internal/model"
)

func TestScanService_RecordScan(t *testing.T) {
	audit := new(MockAuditService)
	audit.On("Append", mock.Anything, model.AuditActionAIScan, "Detected Melanoma (87%)").Return()

	reply := NewScanService(audit).RecordScan(context.Background(), "Melanoma (87%)")

	assert.Equal(t, "Logged", reply)
	audit.AssertExpectations(t)
}
