package api

import (
	"testing"
	"time"

	"woodway/internal/queue"
	"woodway/internal/stage"
	"woodway/internal/workflow"
)

func TestFromQueueItem(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	item := &queue.Item{
		ID:              12,
		BatchID:         "batch-7",
		Ordinal:         2,
		SourcePath:      "/intake/шпон дуб.jpg",
		MediaKind:       queue.KindImage,
		Status:          queue.StatusTagged,
		AttributesJSON:  `{"category":"shpon","species":"dub"}`,
		NamingJSON:      `{"base":"shpon-dub","final":"shpon-dub-3.webp","ext":"webp","number":3}`,
		BundleJSON:      `{"ua":{"alt_text":"Шпон дуба"}}`,
		MetadataVariant: "algorithmic",
		OutputPath:      "/output/seo-media/shpon-dub-3.webp",
		ProgressStage:   "Tagged",
		ProgressPercent: 100,
		CreatedAt:       created,
		UpdatedAt:       created.Add(time.Minute),
	}

	dto := FromQueueItem(item)
	if dto.ID != 12 || dto.BatchID != "batch-7" || dto.Ordinal != 2 {
		t.Fatalf("identity fields wrong: %+v", dto)
	}
	if dto.OriginalFilename != "шпон дуб.jpg" {
		t.Fatalf("unexpected filename: %q", dto.OriginalFilename)
	}
	if dto.MediaKind != "image" || dto.Status != "tagged" {
		t.Fatalf("kind/status wrong: %q %q", dto.MediaKind, dto.Status)
	}
	if dto.PlannedName != "shpon-dub-3.webp" {
		t.Fatalf("unexpected planned name: %q", dto.PlannedName)
	}
	if dto.OutputFile != "/output/seo-media/shpon-dub-3.webp" {
		t.Fatalf("unexpected output file: %q", dto.OutputFile)
	}
	if string(dto.Selection) == "" || string(dto.Tags) == "" {
		t.Fatal("expected selection and tags passthrough")
	}
	if dto.CreatedAt != "2026-03-14T09:26:53.000Z" {
		t.Fatalf("unexpected created timestamp: %q", dto.CreatedAt)
	}
	if dto.Progress.Stage != "Tagged" || dto.Progress.Percent != 100 {
		t.Fatalf("unexpected progress: %+v", dto.Progress)
	}
}

func TestFromQueueItemNil(t *testing.T) {
	if got := FromQueueItem(nil); got.ID != 0 {
		t.Fatalf("expected zero DTO, got %+v", got)
	}
}

func TestFromBatch(t *testing.T) {
	started := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	batch := &queue.Batch{
		ID:               "batch-9",
		Variant:          "generative",
		NumberingEnabled: true,
		CreatedAt:        started.Add(-time.Minute),
		StartedAt:        &started,
	}
	summary := FromBatch(batch, map[queue.Status]int{
		queue.StatusCompleted: 4,
		queue.StatusFailed:    1,
	})
	if summary.ID != "batch-9" || !summary.Numbering || summary.Variant != "generative" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.StartedAt == "" || summary.FinishedAt != "" {
		t.Fatalf("unexpected timestamps: %+v", summary)
	}
	if summary.Counts["completed"] != 4 || summary.Counts["failed"] != 1 {
		t.Fatalf("unexpected counts: %+v", summary.Counts)
	}
}

func TestFromStatusSummary(t *testing.T) {
	summary := workflow.StatusSummary{
		Running:   true,
		LastError: "tag stage: boom",
		QueueStats: map[queue.Status]int{
			queue.StatusPending: 3,
		},
		StageHealth: map[string]stage.Health{
			"tag":     {Name: "tag", Ready: true},
			"convert": {Name: "convert", Ready: false, Detail: "ffmpeg missing"},
		},
		LastItem: &queue.Item{ID: 4, SourcePath: "/intake/dub.jpg"},
	}

	wf := FromStatusSummary(summary)
	if !wf.Running || wf.LastError == "" {
		t.Fatalf("unexpected workflow status: %+v", wf)
	}
	if wf.QueueStats["pending"] != 3 {
		t.Fatalf("unexpected stats: %+v", wf.QueueStats)
	}
	if len(wf.StageHealth) != 2 || wf.StageHealth[0].Name != "convert" {
		t.Fatalf("expected sorted stage health, got %+v", wf.StageHealth)
	}
	if wf.LastItem == nil || wf.LastItem.ID != 4 {
		t.Fatalf("expected last item, got %+v", wf.LastItem)
	}
}

func TestSortQueueItemsByBatchOrder(t *testing.T) {
	items := []QueueItem{
		{ID: 3, BatchID: "b", Ordinal: 1},
		{ID: 1, BatchID: "a", Ordinal: 1},
		{ID: 2, BatchID: "a", Ordinal: 0},
	}
	sorted := SortQueueItemsByBatchOrder(items)
	want := []int64{2, 1, 3}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d: got id %d, want %d", i, sorted[i].ID, id)
		}
	}
	if items[0].ID != 3 {
		t.Fatal("input slice mutated")
	}
}
