package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeExecutor struct {
	gotBinary string
	gotArgs   []string
	stdout    []string
	stderr    []string
	err       error
	onRun     func()
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	f.gotBinary = binary
	f.gotArgs = append([]string{}, args...)
	for _, line := range f.stdout {
		onStdout(line)
	}
	for _, line := range f.stderr {
		onStderr(line)
	}
	if f.onRun != nil {
		f.onRun()
	}
	return f.err
}

func TestRunnerInjectsProgressArgs(t *testing.T) {
	exec := &fakeExecutor{}
	runner := NewRunner("ffmpeg", WithExecutor(exec))

	err := runner.Run(context.Background(), Job{
		Args:     []string{"-y", "-i", "in.mp4", "out.mp4"},
		Progress: func(ProgressUpdate) {},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"-progress", "pipe:1", "-stats_period", "0.5", "-nostats", "-y", "-i", "in.mp4", "out.mp4"}
	if !reflect.DeepEqual(exec.gotArgs, want) {
		t.Errorf("args = %v,\nwant %v", exec.gotArgs, want)
	}

	err = runner.Run(context.Background(), Job{Args: []string{"-y", "-i", "in.png", "out.webp"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exec.gotArgs[0] != "-y" {
		t.Errorf("progress args injected without callback: %v", exec.gotArgs)
	}
}

func TestRunnerReportsProgress(t *testing.T) {
	exec := &fakeExecutor{
		stdout: []string{
			"out_time_ms=30000000", "speed=1.0x", "progress=continue",
			"out_time_ms=60000000", "speed=1.0x", "progress=end",
		},
	}
	runner := NewRunner("ffmpeg", WithExecutor(exec))

	var percents []float64
	err := runner.Run(context.Background(), Job{
		Args:     []string{"-y"},
		Duration: 60 * time.Second,
		Progress: func(u ProgressUpdate) { percents = append(percents, u.Percent) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(percents) != 2 || percents[0] != 50 || percents[1] != 100 {
		t.Errorf("percents = %v, want [50 100]", percents)
	}
}

func TestRunnerSummarizesFailure(t *testing.T) {
	exec := &fakeExecutor{
		stderr: []string{
			"Input #0, mov, from 'clip.mov':",
			"Error while decoding stream #0:0",
			"Conversion failed!",
		},
		err: errors.New("exit status 1"),
	}
	runner := NewRunner("ffmpeg", WithExecutor(exec))

	err := runner.Run(context.Background(), Job{Args: []string{"-y"}})
	if err == nil {
		t.Fatal("expected error")
	}
	message := err.Error()
	if !strings.Contains(message, "Conversion failed!") || !strings.Contains(message, "Error while decoding stream") {
		t.Errorf("error missing stderr detail: %v", message)
	}
	if !strings.Contains(message, "exit status 1") {
		t.Errorf("error missing exit status: %v", message)
	}
}

func TestRunnerFallsBackToLastStderrLine(t *testing.T) {
	exec := &fakeExecutor{
		stderr: []string{"something benign happened"},
		err:    errors.New("exit status 1"),
	}
	runner := NewRunner("ffmpeg", WithExecutor(exec))

	err := runner.Run(context.Background(), Job{Args: []string{"-y"}})
	if err == nil || !strings.Contains(err.Error(), "something benign happened") {
		t.Errorf("expected fallback stderr line, got %v", err)
	}
}

func TestRunnerReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := &fakeExecutor{
		err:   errors.New("signal: killed"),
		onRun: cancel,
	}
	runner := NewRunner("ffmpeg", WithExecutor(exec))

	err := runner.Run(ctx, Job{Args: []string{"-y"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunnerVerifiesOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.webp")

	exec := &fakeExecutor{}
	runner := NewRunner("ffmpeg", WithExecutor(exec))

	err := runner.Run(context.Background(), Job{Args: []string{"-y"}, OutputPath: output})
	if err == nil || !strings.Contains(err.Error(), "produced no output") {
		t.Errorf("expected missing-output error, got %v", err)
	}

	if err := os.WriteFile(output, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err = runner.Run(context.Background(), Job{Args: []string{"-y"}, OutputPath: output})
	if err == nil || !strings.Contains(err.Error(), "produced empty output") {
		t.Errorf("expected empty-output error, got %v", err)
	}

	if err := os.WriteFile(output, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background(), Job{Args: []string{"-y"}, OutputPath: output}); err != nil {
		t.Errorf("Run with valid output: %v", err)
	}
}

func TestRunnerDefaultsBinary(t *testing.T) {
	runner := NewRunner("  ")
	if runner.Binary() != "ffmpeg" {
		t.Errorf("Binary = %q, want ffmpeg", runner.Binary())
	}
}

func TestSummarizeStderr(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			"keyword lines picked newest first",
			[]string{"opening input", "Invalid data found", "Conversion failed!"},
			"Conversion failed!; Invalid data found",
		},
		{
			"at most two keyword lines",
			[]string{"error one", "error two", "error three"},
			"error three; error two",
		},
		{
			"fallback to last line",
			[]string{"first", "plain last line"},
			"plain last line",
		},
		{
			"empty input",
			nil,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarizeStderr(tt.lines); got != tt.want {
				t.Errorf("summarizeStderr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeStderrTruncatesLongLines(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := summarizeStderr([]string{long})
	if len(got) != 200 {
		t.Errorf("len = %d, want 200", len(got))
	}
}

func TestTailBufferKeepsLastLines(t *testing.T) {
	buf := newTailBuffer(3)
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		buf.Add(line)
	}
	want := []string{"c", "d", "e"}
	if got := buf.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %v, want %v", got, want)
	}
}

func TestGuardPath(t *testing.T) {
	if got := guardPath("-weird.png"); got != "./-weird.png" {
		t.Errorf("guardPath = %q", got)
	}
	if got := guardPath("/abs/fine.png"); got != "/abs/fine.png" {
		t.Errorf("guardPath = %q", got)
	}
}
