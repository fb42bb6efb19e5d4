// Package naming plans SEO filenames from taxonomy selections.
//
// Attribute slugs join in a canonical order into a base name, an
// optional sequence number is rendered through the configured template,
// and collisions against the output directory resolve with a bounded
// numeric suffix. Plans are stored on queue items as JSON so a resumed
// batch reuses the names it already committed to.
package naming
