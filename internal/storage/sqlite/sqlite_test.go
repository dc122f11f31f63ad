package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/storage/storagetest"
)

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	storagetest.Run(t, store)
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	user := models.NewUser("dana@example.com", "Dana", "hash")
	if err := store.CreateUser(t.Context(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	store.Close()

	// Migrations must be idempotent
	store, err = New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	got, err := store.GetUserByID(t.Context(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != "dana@example.com" {
		t.Errorf("email: expected dana@example.com, got %s", got.Email)
	}
}
