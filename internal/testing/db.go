// Package testing provides testing utilities and helpers for the vibronic project.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/vibronic/internal/database"
)

// NewTestDB creates a migrated ledger database in a temporary file.
// Returns the database instance and a cleanup function that closes the connection.
// The cleanup function is idempotent and can be called multiple times safely.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	// Each test gets its own file so tests stay isolated
	tmpPath := filepath.Join(t.TempDir(), "ledger.db")

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileScratch,
		Name:    "ledger",
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			// Log error but don't fail test - cleanup should be idempotent
			t.Logf("Warning: Failed to close test database: %v", err)
		}
		_ = os.Remove(tmpPath)
	}
}
