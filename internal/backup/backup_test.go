package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/griddock/stationscope/internal/store"
)

func createDatabase(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "stationscope.db")
	s, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	return path
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	dbPath := createDatabase(t, srcDir)

	configPath := filepath.Join(srcDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 8420\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := Backup(ctx, dbPath, configPath, archive); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	restoreDir := t.TempDir()
	if err := Restore(ctx, archive, restoreDir, false); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	for _, name := range []string{"stationscope.db", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(restoreDir, name)); err != nil {
			t.Errorf("%s not restored: %v", name, err)
		}
	}
}

func TestRestoreRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	dbPath := createDatabase(t, srcDir)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := Backup(ctx, dbPath, "", archive); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	// Restoring over the source without force must fail.
	if err := Restore(ctx, archive, srcDir, false); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if err := Restore(ctx, archive, srcDir, true); err != nil {
		t.Fatalf("forced restore: %v", err)
	}
}

func TestBackupMissingDatabase(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	err := Backup(context.Background(), filepath.Join(t.TempDir(), "absent.db"), "", archive)
	if err == nil {
		t.Fatal("expected error for missing database")
	}
}
