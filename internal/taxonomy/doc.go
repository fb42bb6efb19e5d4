// Package taxonomy holds the controlled vocabulary that drives catalog
// naming and metadata: product categories with their types, plus the shared
// option lists (species, finishes, thicknesses, grades, sheet sizes).
//
// The tree is immutable after Load and validated eagerly: every node must
// carry a slug that satisfies the filename grammar, and duplicate slugs
// within one list are rejected. Localized labels exist for Ukrainian,
// English, and Russian; a missing label falls back to the title-cased slug.
//
// A built-in tree ships embedded in the binary; deployments may override it
// with their own TOML file via config.
package taxonomy
