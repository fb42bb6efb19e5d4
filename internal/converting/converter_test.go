package converting_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"woodway/internal/converting"
	"woodway/internal/logging"
	"woodway/internal/media/convert"
	"woodway/internal/media/ffprobe"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/testsupport"
)

// scriptedExecutor mimics ffmpeg: it records invocations, writes the
// destination file, and optionally emits progress blocks or fails.
type scriptedExecutor struct {
	mu       sync.Mutex
	calls    [][]string
	fail     bool
	progress bool
}

func (s *scriptedExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{}, args...))
	s.mu.Unlock()
	if s.fail {
		onStderr("clip.mp4: Invalid data found when processing input")
		return errors.New("exit status 1")
	}
	if s.progress && onStdout != nil {
		onStdout("out_time_ms=2000000")
		onStdout("speed=3.5x")
		onStdout("progress=continue")
		onStdout("out_time_ms=4000000")
		onStdout("progress=end")
	}
	dst := args[len(args)-1]
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("converted"), 0o644)
}

func (s *scriptedExecutor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func stubProbe(t *testing.T, res ffprobe.Result) {
	t.Helper()
	restore := converting.SetProbeForTests(func(context.Context, string, string) (ffprobe.Result, error) {
		return res, nil
	})
	t.Cleanup(restore)
}

func imageProbe() ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 2400, Height: 1600}},
		Format:  ffprobe.Format{Size: "500000"},
	}
}

func videoProbe() ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Width: 1920, Height: 1080, AvgFrameRate: "30/1"},
			{CodecType: "audio"},
		},
		Format: ffprobe.Format{Duration: "4.0", Size: "900000"},
	}
}

func TestConverterExecuteImage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	source := testsupport.WriteIntakeFile(t, cfg.Paths.IntakeDir, "Дуб щит.jpg")
	item := testsupport.NewItem(t, store, batch.ID, source, queue.KindImage)
	stubProbe(t, imageProbe())

	exec := &scriptedExecutor{}
	runner := convert.NewRunner("ffmpeg", convert.WithExecutor(exec))
	conv := converting.NewConverterWithRunner(cfg, store, logging.NewNop(), runner)

	ctx := context.Background()
	if err := conv.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := conv.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.StagedPath == "" {
		t.Fatal("expected staged path to be set")
	}
	if !strings.HasSuffix(item.StagedPath, "."+cfg.Conversion.ImageFormat) {
		t.Fatalf("staged path %q does not use target format", item.StagedPath)
	}
	if !strings.HasPrefix(item.StagedPath, cfg.Paths.StagingDir) {
		t.Fatalf("staged path %q escapes staging dir", item.StagedPath)
	}
	if _, err := os.Stat(item.StagedPath); err != nil {
		t.Fatalf("staged file missing: %v", err)
	}
	if item.SourceInfoJSON == "" {
		t.Fatal("expected source info to be recorded")
	}
	info, err := convert.SourceInfoFromJSON(item.SourceInfoJSON)
	if err != nil {
		t.Fatalf("decode source info: %v", err)
	}
	if info.Width != 2400 || info.Height != 1600 {
		t.Fatalf("unexpected probed dimensions: %dx%d", info.Width, info.Height)
	}
	if item.PosterPath != "" {
		t.Fatalf("images must not produce posters, got %q", item.PosterPath)
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected progress complete, got %.1f", item.ProgressPercent)
	}
}

func TestConverterExecuteVideoWithPoster(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.GeneratePoster = true
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	source := testsupport.WriteIntakeFile(t, cfg.Paths.IntakeDir, "clip.mov")
	item := testsupport.NewItem(t, store, batch.ID, source, queue.KindVideo)
	stubProbe(t, videoProbe())

	exec := &scriptedExecutor{progress: true}
	runner := convert.NewRunner("ffmpeg", convert.WithExecutor(exec))
	conv := converting.NewConverterWithRunner(cfg, store, logging.NewNop(), runner)

	ctx := context.Background()
	if err := conv.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !strings.HasSuffix(item.StagedPath, "."+cfg.Conversion.VideoFormat) {
		t.Fatalf("staged path %q does not use video format", item.StagedPath)
	}
	if item.PosterPath == "" {
		t.Fatal("expected poster path for video item")
	}
	if !strings.HasSuffix(item.PosterPath, "-poster.webp") {
		t.Fatalf("unexpected poster name %q", item.PosterPath)
	}
	if _, err := os.Stat(item.PosterPath); err != nil {
		t.Fatalf("poster file missing: %v", err)
	}
	if exec.callCount() != 2 {
		t.Fatalf("expected transcode + poster invocations, got %d", exec.callCount())
	}
}

func TestConverterExecuteMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, filepath.Join(cfg.Paths.IntakeDir, "gone.jpg"), queue.KindImage)

	conv := converting.NewConverterWithRunner(cfg, store, logging.NewNop(), convert.NewRunner("ffmpeg", convert.WithExecutor(&scriptedExecutor{})))
	err := conv.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConverterExecuteToolFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	source := testsupport.WriteIntakeFile(t, cfg.Paths.IntakeDir, "broken.jpg")
	item := testsupport.NewItem(t, store, batch.ID, source, queue.KindImage)
	stubProbe(t, imageProbe())

	conv := converting.NewConverterWithRunner(cfg, store, logging.NewNop(), convert.NewRunner("ffmpeg", convert.WithExecutor(&scriptedExecutor{fail: true})))
	err := conv.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected conversion failure")
	}
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}
