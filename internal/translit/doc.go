// Package translit converts Ukrainian and Russian product terms into
// Latin SEO slugs.
//
// Transliteration follows the Ukrainian national romanization table with a
// small set of Russian compatibility mappings, tuned for catalog filenames:
// soft/hard signs and apostrophes disappear, unknown non-ASCII runes are
// dropped, and ASCII passes through untouched. Slugify layers the filename
// rules on top: lowercase, hyphen-separated, with a literal dot permitted
// only inside a metric size token such as "0.6mm".
package translit
