// Package main hosts the Woodway CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into batch
// runs, queue maintenance operations, manifest exports, taxonomy lookups,
// and configuration scaffolding. It centralizes configuration resolution
// and run logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives
// in reusable pipeline components.
package main
