package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"woodway/internal/config"
	"woodway/internal/logging"
)

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}

	logger.Info("pipeline started", logging.String(logging.FieldComponent, "workflow"))

	logPath := filepath.Join(cfg.Paths.LogDir, "woodway.log")
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "pipeline started") {
		t.Fatalf("log file missing message, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHeaderIncludesBatchAndItem(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("item claimed",
		logging.String(logging.FieldComponent, "workflow"),
		logging.String(logging.FieldBatchID, "0b5f2c1a-9f11-4a7e-8c35-aaaa00001111"),
		logging.Int64(logging.FieldItemID, 7),
		logging.String(logging.FieldStage, "naming"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "[workflow]") {
		t.Errorf("expected component in header, got %q", line)
	}
	if !strings.Contains(line, "Batch 0b5f2c1a") {
		t.Errorf("expected short batch id in header, got %q", line)
	}
	if !strings.Contains(line, "Item #7 (naming)") {
		t.Errorf("expected item subject in header, got %q", line)
	}
}

func TestConsoleOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONFormatUsesRenamedKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.json")

	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("export finished", logging.String("export_format", "csv"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{`"ts":`, `"level":"info"`, `"msg":"export finished"`, `"export_format":"csv"`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %s in json output, got %q", want, line)
		}
	}
}

func TestWarnWithContextAddsHintAndImpact(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.json")

	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "poster generation failed", "poster_failed")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{`"event_type":"poster_failed"`, `"error_hint"`, `"impact"`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %s in output, got %q", want, line)
		}
	}
}

func TestPruneRunLogs(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "woodway-20200101T000000.000Z.log")
	activeLog := filepath.Join(dir, "woodway-20260101T000000.000Z.log")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, path := range []string{oldLog, activeLog, unrelated} {
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -30)
	for _, path := range []string{oldLog, activeLog, unrelated} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("age %s: %v", path, err)
		}
	}

	logging.PruneRunLogs(logging.NewNop(), dir, "woodway-*.log", activeLog, 7)

	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatalf("expected old log pruned, stat err = %v", err)
	}
	if _, err := os.Stat(activeLog); err != nil {
		t.Fatalf("expected active log kept: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("expected non-matching file kept: %v", err)
	}
}

func TestPruneRunLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "woodway-20200101T000000.000Z.log")
	if err := os.WriteFile(oldLog, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -365)
	if err := os.Chtimes(oldLog, stale, stale); err != nil {
		t.Fatalf("age: %v", err)
	}

	logging.PruneRunLogs(logging.NewNop(), dir, "woodway-*.log", "", 0)

	if _, err := os.Stat(oldLog); err != nil {
		t.Fatalf("expected retention 0 to keep everything: %v", err)
	}
}
