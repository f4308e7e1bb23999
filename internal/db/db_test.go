package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	gormDB, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))

	for _, table := range []interface{}{&model.User{}, &model.PatientRecord{}, &model.PatientSequence{}, &model.AuditLogEntry{}} {
		assert.True(t, gormDB.Migrator().HasTable(table))
	}
}
