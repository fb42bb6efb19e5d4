package preflight

import (
	"context"

	"woodway/internal/config"
	"woodway/internal/deps"
	"woodway/internal/metadata"
)

// Result reports the outcome of a single preflight check. Optional
// checks inform but never block a run.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every applicable preflight check for the given config.
// Conversion tools and directories are always checked; the metadata API
// check runs only when the generative variant is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := ToolResults(deps.CheckTools(ctx, cfg))

	if cfg.Paths.IntakeDir != "" {
		results = append(results, CheckDirectoryReadable("Intake directory", cfg.Paths.IntakeDir))
	}
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if variant, err := metadata.ParseVariant(cfg.Metadata.Variant); err == nil && variant == metadata.VariantGenerative {
		results = append(results, CheckMetadataProvider(ctx, cfg))
	}

	return results
}

// Blockers filters the results down to failed required checks. An empty
// return means the environment can run a batch.
func Blockers(results []Result) []Result {
	var blockers []Result
	for _, result := range results {
		if !result.Passed && !result.Optional {
			blockers = append(blockers, result)
		}
	}
	return blockers
}
