package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/polleyhq/polley/pkg/internal/cache"
	"github.com/polleyhq/polley/pkg/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase points the package-global gorm handle at a fresh in-memory
// sqlite database for the current test and resets the cache store, so metrics
// cached by one test cannot leak into the next one's poll ids.
func NewDatabase(t *testing.T) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps concurrent writers from tripping over
	// sqlite's file locking; the unique-index semantics stay the same.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigration(db))
	database.C = db

	require.NoError(t, cache.NewStore())

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
}
