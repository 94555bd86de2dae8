package testhelpers

import (
	"fmt"
	"testing"

	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB 建立獨立的記憶體 SQLite 資料庫，測試結束時關閉
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
