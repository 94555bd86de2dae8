package database

import (
	"context"
	"path/filepath"
	"testing"

	"snap2cook/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpen_SQLiteMigratesTables(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	defer Close(db)

	for _, model := range []interface{}{&User{}, &SavedRecipe{}, &Feedback{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.NoError(t, Ping(context.Background(), db))
}

func TestOpen_UsernameIsUnique(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "unique.db"),
	})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Create(&User{Username: "alice", HashedPassword: "x"}).Error)
	err = db.Create(&User{Username: "alice", HashedPassword: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, parseLogLevel("INFO"), parseLogLevel("info"))
	assert.Equal(t, parseLogLevel(""), parseLogLevel("silent"))
	assert.NotEqual(t, parseLogLevel("warn"), parseLogLevel("error"))
}
