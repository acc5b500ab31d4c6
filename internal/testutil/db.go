package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"testing"

	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// CaptureOutput captures stdout during function execution
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	return <-outC
}

// SetupTestDB creates an in-memory database with the full schema and the
// default Active / Inactive / Paused columns
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SetupEmptyTestDB is SetupTestDB without any columns
func SetupEmptyTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := SetupTestDB(t)
	if _, err := db.ExecContext(context.Background(), "DELETE FROM board_columns"); err != nil {
		t.Fatalf("Failed to clear columns: %v", err)
	}
	return db
}

// CreateTestClient inserts a client with a raw status value and returns its ID.
// The status is stored verbatim so legacy and custom values can be exercised.
func CreateTestClient(t *testing.T, db *sql.DB, name string, status models.Status) string {
	t.Helper()
	client, err := database.NewRepository(db).CreateClient(context.Background(), name, status)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	return client.ID
}

// CreateTestColumn appends a column to the board and returns its ID
func CreateTestColumn(t *testing.T, db *sql.DB, name string, members ...string) string {
	t.Helper()
	repo := database.NewRepository(db)
	col, err := repo.CreateColumn(context.Background(), name, "")
	if err != nil {
		t.Fatalf("Failed to create test column: %v", err)
	}
	if len(members) > 0 {
		SetMembers(t, db, col.ID, members...)
	}
	return col.ID
}

// SetMembers overwrites a column's member list
func SetMembers(t *testing.T, db *sql.DB, columnID string, members ...string) {
	t.Helper()
	if members == nil {
		members = []string{}
	}
	if err := database.NewRepository(db).UpdateColumnMembers(context.Background(), columnID, members); err != nil {
		t.Fatalf("Failed to set members of %s: %v", columnID, err)
	}
}

// Members returns a column's current member list
func Members(t *testing.T, db *sql.DB, columnID string) []string {
	t.Helper()
	col, err := database.NewRepository(db).GetColumn(context.Background(), columnID)
	if err != nil {
		t.Fatalf("Failed to read column %s: %v", columnID, err)
	}
	return col.Members
}

// ClientStatus returns a client's stored status
func ClientStatus(t *testing.T, db *sql.DB, clientID string) models.Status {
	t.Helper()
	c, err := database.NewRepository(db).GetClient(context.Background(), clientID)
	if err != nil {
		t.Fatalf("Failed to read client %s: %v", clientID, err)
	}
	return c.Status
}

// Snapshot reads every client and column
func Snapshot(t *testing.T, db *sql.DB) ([]*models.Client, []*models.Column) {
	t.Helper()
	repo := database.NewRepository(db)
	clients, err := repo.ListClients(context.Background())
	if err != nil {
		t.Fatalf("Failed to list clients: %v", err)
	}
	columns, err := repo.ListColumns(context.Background())
	if err != nil {
		t.Fatalf("Failed to list columns: %v", err)
	}
	return clients, columns
}
