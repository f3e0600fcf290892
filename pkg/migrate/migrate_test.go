package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedMigrationsAreValid(t *testing.T) {
	count, err := ValidateDir("migrations")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMigrationsContainSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_products_table.sql": {
			"CREATE TABLE IF NOT EXISTS products",
			"CHECK (price >= 0)",
			"CHECK (category IN ('Men', 'Women', 'Accessories', 'Shoes', 'Sale'))",
			"DROP TABLE IF EXISTS products",
		},
		"*_create_users_table.sql": {
			"CONSTRAINT users_email_key UNIQUE (email)",
			"CHECK (role IN ('customer', 'admin'))",
		},
		"*_create_newsletter_subscribers_table.sql": {
			"CONSTRAINT newsletter_subscribers_email_key UNIQUE (email)",
			"is_active BOOLEAN NOT NULL DEFAULT TRUE",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, sub := range checks {
			assert.Contains(t, string(data), sub, pattern)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Product Tags!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260305093000_add_product_tags.sql"), path)

	_, err = CreateSQLMigration(dir, "add product tags", now)
	require.Error(t, err)

	count, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	_, err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")

	dir = t.TempDir()
	body := strings.Join([]string{"-- +goose Up", "-- +goose StatementBegin", "SELECT 1;", "-- +goose Down"}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_x.sql"), []byte(body), 0o644))
	_, err = ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced")
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("20260301120100")
	require.NoError(t, err)
	assert.Equal(t, int64(20260301120100), v)

	for _, raw := range []string{"", "latest", "-5"} {
		_, err := ParseVersion(raw)
		assert.Error(t, err, raw)
	}
}

func TestRunRejectsUnsupportedCommand(t *testing.T) {
	err := Run(context.Background(), nil, DefaultDir, "reset")
	assert.ErrorIs(t, err, errUnsupportedCommand)

	err = Run(context.Background(), nil, DefaultDir, "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is required")
}
