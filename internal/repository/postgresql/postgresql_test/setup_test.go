package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// NewTestDatabase connects to TEST_DATABASE_URL, migrates it and empties the
// report tables. Tests are skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	truncateAllTables(t, db)
	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	for _, table := range []string{"processing_logs", "reports"} {
		_, err := tx.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err, "truncate %s", table)
	}
	require.NoError(t, tx.Commit(ctx))
}
