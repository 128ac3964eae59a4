package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := `
-- header comment
CREATE TABLE a (
    id INT
);

CREATE TABLE b (id INT);
`
	stmts := splitStatements(script)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.Contains(t, stmts[1], "CREATE TABLE b")
}

func TestSplitStatements_Empty(t *testing.T) {
	assert.Empty(t, splitStatements("-- only comments\n"))
	assert.Empty(t, splitStatements("   \n\n"))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFiles.ReadDir(".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	raw, err := migrationFiles.ReadFile(entries[0].Name())
	require.NoError(t, err)
	// The seat uniqueness key is the core booking guarantee; the schema
	// must always carry it.
	assert.Contains(t, string(raw), "uq_screening_seat_row")
}
