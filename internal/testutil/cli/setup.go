// Package cli provides helpers for command tests. It lives apart from
// testutil so service tests can import testutil without pulling in the CLI.
package cli

import (
	"database/sql"
	"testing"

	"github.com/thenoetrevino/nutriboard/internal/app"
	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/testutil"
)

// SetupCLITest creates an in-memory DB with the default columns and an App
// over it. Events are recorded by the returned mock publisher.
func SetupCLITest(t *testing.T) (*sql.DB, *app.App, *testutil.MockEventPublisher) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	pub := testutil.NewMockEventPublisher()
	return db, app.New(database.NewRepository(db), app.WithEventPublisher(pub)), pub
}

// SetupEmptyCLITest is SetupCLITest without any columns
func SetupEmptyCLITest(t *testing.T) (*sql.DB, *app.App, *testutil.MockEventPublisher) {
	t.Helper()
	db := testutil.SetupEmptyTestDB(t)
	pub := testutil.NewMockEventPublisher()
	return db, app.New(database.NewRepository(db), app.WithEventPublisher(pub)), pub
}

// ColumnID returns the ID of the column with the given name
func ColumnID(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	_, columns := testutil.Snapshot(t, db)
	for _, col := range columns {
		if col.Name == name {
			return col.ID
		}
	}
	t.Fatalf("no column named %q", name)
	return ""
}
