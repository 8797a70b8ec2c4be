package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dbService, err := NewSqliteDBService(":memory:")
	require.NoError(t, err, "Failed to connect to in-memory database")
	t.Cleanup(func() { dbService.Close() })

	db := dbService.GetDB()
	// Enable debug mode to see SQL queries during test
	if testing.Verbose() {
		db = db.Debug()
	}
	return db
}
