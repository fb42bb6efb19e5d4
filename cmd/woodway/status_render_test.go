package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"woodway/internal/api"
	"woodway/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Database", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Database:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyStatusLineVariants(t *testing.T) {
	ready := dependencyStatusLine(api.DependencyStatus{Name: "FFmpeg", Available: true, Command: "ffmpeg"}, false)
	if !strings.Contains(ready, "[OK] Ready (command: ffmpeg)") {
		t.Fatalf("expected ready line, got %q", ready)
	}

	missing := dependencyStatusLine(api.DependencyStatus{Name: "FFmpeg", Available: false, Detail: `binary "ffmpeg" not found`}, false)
	if !strings.Contains(missing, "[ERROR]") || !strings.Contains(missing, "not found") {
		t.Fatalf("expected error line, got %q", missing)
	}

	optional := dependencyStatusLine(api.DependencyStatus{Name: "FFprobe", Available: false, Optional: true}, false)
	if !strings.Contains(optional, "[WARN] Not found") {
		t.Fatalf("expected warn line, got %q", optional)
	}
}

func TestPreflightStatusLineKinds(t *testing.T) {
	ok := preflightStatusLine(preflight.Result{Name: "Staging directory", Passed: true, Detail: "/tmp (read/write ok)"}, false)
	if !strings.Contains(ok, "[OK]") {
		t.Fatalf("expected ok line, got %q", ok)
	}

	warn := preflightStatusLine(preflight.Result{Name: "Metadata", Optional: true, Detail: "no API key"}, false)
	if !strings.Contains(warn, "[WARN]") {
		t.Fatalf("expected warn line, got %q", warn)
	}

	fail := preflightStatusLine(preflight.Result{Name: "Output directory", Detail: "missing"}, false)
	if !strings.Contains(fail, "[ERROR]") {
		t.Fatalf("expected error line, got %q", fail)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Queue", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Queue ==" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected rule: %q", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
