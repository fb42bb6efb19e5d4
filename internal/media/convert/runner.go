package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// stderr lines kept for failure summaries.
const stderrTailLimit = 10

// progressArgs is prepended when a caller wants progress callbacks:
// machine-readable updates on stdout twice a second, and -nostats so
// the interleaved carriage-return statistics stay off stderr.
var progressArgs = []string{"-progress", "pipe:1", "-stats_period", "0.5", "-nostats"}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner executes ffmpeg invocations built by this package.
type Runner struct {
	binary string
	exec   Executor
}

// NewRunner constructs a runner for the given ffmpeg binary.
func NewRunner(binary string, opts ...Option) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	runner := &Runner{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Job is one ffmpeg invocation. Duration is the source duration used
// for percent math; OutputPath, when set, is verified to exist and be
// non-empty after the process exits cleanly.
type Job struct {
	Args       []string
	OutputPath string
	Duration   time.Duration
	Progress   func(ProgressUpdate)
}

// Run executes the job. Failures carry the most relevant stderr lines;
// cancellation surfaces as the context error rather than an ffmpeg
// failure.
func (r *Runner) Run(ctx context.Context, job Job) error {
	args := job.Args
	if job.Progress != nil {
		args = append(append([]string{}, progressArgs...), args...)
	}

	parser := newProgressParser(job.Duration)
	tail := newTailBuffer(stderrTailLimit)
	onStdout := func(line string) {
		update, ok := parser.Parse(line)
		if ok && job.Progress != nil {
			job.Progress(update)
		}
	}

	if err := r.exec.Run(ctx, r.binary, args, onStdout, tail.Add); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if detail := summarizeStderr(tail.Lines()); detail != "" {
			return fmt.Errorf("%s: %s: %w", r.binary, detail, err)
		}
		return fmt.Errorf("%s: %w", r.binary, err)
	}

	if job.OutputPath != "" {
		info, err := os.Stat(job.OutputPath)
		if err != nil {
			return fmt.Errorf("%s produced no output at %s", r.binary, job.OutputPath)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%s produced empty output at %s", r.binary, job.OutputPath)
		}
	}
	return nil
}

// Binary returns the configured ffmpeg executable.
func (r *Runner) Binary() string {
	return r.binary
}

// summarizeStderr distills captured stderr into a short failure
// reason: the most recent lines mentioning a failure keyword, or the
// last line when nothing matches.
func summarizeStderr(lines []string) string {
	keywords := []string{"error", "failed", "invalid", "cannot", "unable"}
	var picked []string
	for i := len(lines) - 1; i >= 0 && len(picked) < 2; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				picked = append(picked, line)
				break
			}
		}
	}
	if len(picked) > 0 {
		return strings.Join(picked, "; ")
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return ""
}

type tailBuffer struct {
	mu    sync.Mutex
	limit int
	lines []string
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.limit {
		b.lines = b.lines[len(b.lines)-b.limit:]
	}
}

func (b *tailBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, onStderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// guardPath keeps a leading dash in a user-supplied path from being
// read as an ffmpeg flag.
func guardPath(path string) string {
	if strings.HasPrefix(path, "-") {
		return "./" + path
	}
	return path
}
