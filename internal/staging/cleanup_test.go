package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"woodway/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	oldDir := filepath.Join(tmpDir, "4f8c9a2e-old-batch")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create old dir: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	recentDir := filepath.Join(tmpDir, "7b1d0c3f-recent-batch")
	if err := os.Mkdir(recentDir, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(result.Removed))
	}
	if result.Removed[0] != oldDir {
		t.Errorf("expected %s to be removed, got %s", oldDir, result.Removed[0])
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent directory should still exist")
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "stray-file.txt")
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %d", len(result.Removed))
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should not have been removed")
	}
}

func TestCleanOrphanedEmptyDir(t *testing.T) {
	for _, dir := range []string{"", "   "} {
		result := CleanOrphaned(context.Background(), dir, nil, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanOrphanedRemovesFinishedBatches(t *testing.T) {
	tmpDir := t.TempDir()

	activeDir := filepath.Join(tmpDir, "11111111-aaaa-bbbb-cccc-222222222222")
	if err := os.Mkdir(activeDir, 0o755); err != nil {
		t.Fatalf("create active dir: %v", err)
	}
	finishedDir := filepath.Join(tmpDir, "33333333-dddd-eeee-ffff-444444444444")
	if err := os.Mkdir(finishedDir, 0o755); err != nil {
		t.Fatalf("create finished dir: %v", err)
	}

	active := map[string]struct{}{
		"11111111-aaaa-bbbb-cccc-222222222222": {},
	}

	result := CleanOrphaned(context.Background(), tmpDir, active, logging.NewNop())

	if len(result.Removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(result.Removed))
	}
	if result.Removed[0] != finishedDir {
		t.Errorf("expected %s to be removed, got %s", finishedDir, result.Removed[0])
	}
	if _, err := os.Stat(finishedDir); !os.IsNotExist(err) {
		t.Error("finished batch directory should have been removed")
	}
	if _, err := os.Stat(activeDir); err != nil {
		t.Error("active batch directory should still exist")
	}
}

func TestCleanOrphanedHonorsCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "55555555-aaaa-bbbb-cccc-666666666666")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := CleanOrphaned(ctx, tmpDir, nil, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Errorf("expected no removals after cancellation, got %d", len(result.Removed))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("directory should still exist after cancelled cleanup")
	}
}

func TestListDirectoriesInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/12345"} {
		dirs, err := ListDirectories(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", path, err)
		}
		if dirs != nil {
			t.Errorf("expected nil for path %q, got %v", path, dirs)
		}
	}
}

func TestListDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	dir1 := filepath.Join(tmpDir, "batch-a")
	if err := os.Mkdir(dir1, 0o755); err != nil {
		t.Fatalf("create dir1: %v", err)
	}
	dir2 := filepath.Join(tmpDir, "batch-b")
	if err := os.Mkdir(dir2, 0o755); err != nil {
		t.Fatalf("create dir2: %v", err)
	}
	file := filepath.Join(tmpDir, "not-a-dir.txt")
	if err := os.WriteFile(file, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	innerFile := filepath.Join(dir1, "item-000", "converted.webp")
	if err := os.MkdirAll(filepath.Dir(innerFile), 0o755); err != nil {
		t.Fatalf("create item dir: %v", err)
	}
	if err := os.WriteFile(innerFile, []byte("12345"), 0o644); err != nil {
		t.Fatalf("create inner file: %v", err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 directories, got %d", len(dirs))
	}

	var foundBatchA bool
	for _, d := range dirs {
		if d.Name == "batch-a" {
			foundBatchA = true
			if d.Size != 5 {
				t.Errorf("batch-a size = %d, want 5", d.Size)
			}
			if d.ModTime.IsZero() {
				t.Error("ModTime should not be zero")
			}
		}
	}
	if !foundBatchA {
		t.Error("did not find batch-a in results")
	}
}
