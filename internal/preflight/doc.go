// Package preflight provides readiness checks for the external tools,
// directories, and APIs a batch run depends on.
//
// The checks run in two contexts:
//   - The process and watch commands call RunAll before the first item
//     is claimed; a failed required check stops the run up front instead
//     of failing every item mid-batch.
//   - The CLI "woodway status" command uses the individual check
//     functions to display environment health.
//
// The metadata API check is always advisory: a missing or invalid key
// degrades tagging to algorithmic bundles rather than blocking the run.
package preflight
