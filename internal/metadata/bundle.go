package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Variant selects how tag bundles are produced.
type Variant string

const (
	VariantAlgorithmic Variant = "algorithmic"
	VariantGenerative  Variant = "generative"
)

// ParseVariant normalizes a variant name from config or CLI input.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(VariantAlgorithmic):
		return VariantAlgorithmic, nil
	case string(VariantGenerative), "ai":
		return VariantGenerative, nil
	default:
		return "", fmt.Errorf("metadata variant: unsupported value %q", s)
	}
}

// Character limits for the SEO fields, counted in runes.
const (
	AltTextMaxChars     = 125
	TitleMaxChars       = 60
	DescriptionMaxChars = 160
)

// TagList holds the keyword tags for one language. Providers return tags
// either as a JSON array or as one comma-separated string; both decode to
// the same list.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = normalizeTags(list)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags: expected array or comma-separated string")
	}
	*t = normalizeTags(strings.Split(joined, ","))
	return nil
}

// Join renders the list in the comma-separated form used by CSV export
// and EXIF keywords.
func (t TagList) Join() string {
	return strings.Join(t, ", ")
}

func normalizeTags(in []string) TagList {
	out := make(TagList, 0, len(in))
	for _, tag := range in {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// LanguageEntry is the SEO field set for one language.
type LanguageEntry struct {
	AltText     string  `json:"alt_text"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Tags        TagList `json:"tags"`
}

func (e LanguageEntry) validate() error {
	switch {
	case strings.TrimSpace(e.AltText) == "":
		return fmt.Errorf("alt_text is empty")
	case utf8.RuneCountInString(e.AltText) > AltTextMaxChars:
		return fmt.Errorf("alt_text exceeds %d characters", AltTextMaxChars)
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("title is empty")
	case utf8.RuneCountInString(e.Title) > TitleMaxChars:
		return fmt.Errorf("title exceeds %d characters", TitleMaxChars)
	case strings.TrimSpace(e.Description) == "":
		return fmt.Errorf("description is empty")
	case utf8.RuneCountInString(e.Description) > DescriptionMaxChars:
		return fmt.Errorf("description exceeds %d characters", DescriptionMaxChars)
	case len(e.Tags) == 0:
		return fmt.Errorf("tags are empty")
	}
	return nil
}

// TagBundle carries the complete three-language SEO metadata for one
// item. Filename records the resolved output name the bundle belongs to.
type TagBundle struct {
	Filename string        `json:"filename,omitempty"`
	UA       LanguageEntry `json:"ua"`
	EN       LanguageEntry `json:"en"`
	RU       LanguageEntry `json:"ru"`
}

// Validate checks that every language section is complete and within the
// character limits. Generative responses failing this check are retried.
func (b TagBundle) Validate() error {
	for _, section := range []struct {
		lang  string
		entry LanguageEntry
	}{
		{"ua", b.UA},
		{"en", b.EN},
		{"ru", b.RU},
	} {
		if err := section.entry.validate(); err != nil {
			return fmt.Errorf("%s section: %w", section.lang, err)
		}
	}
	return nil
}

// BundleFromJSON decodes a bundle stored on a queue item. An empty
// payload yields a zero bundle.
func BundleFromJSON(payload string) (TagBundle, error) {
	var bundle TagBundle
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return bundle, nil
	}
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return TagBundle{}, fmt.Errorf("decode tag bundle: %w", err)
	}
	return bundle, nil
}

// ToJSON encodes the bundle for storage on a queue item.
func (b TagBundle) ToJSON() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode tag bundle: %w", err)
	}
	return string(data), nil
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Truncate collapses whitespace and cuts text to max runes, backing up to
// the last space when that keeps at least 70% of the limit.
func Truncate(text string, max int) string {
	text = strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := runes[:max]
	lastSpace := -1
	for i, r := range cut {
		if r == ' ' {
			lastSpace = i
		}
	}
	if lastSpace > int(float64(max)*0.7) {
		cut = cut[:lastSpace]
	}
	return strings.TrimSpace(string(cut))
}

var (
	spaceBeforePunctRE = regexp.MustCompile(`\s+([|,.-])`)
	spaceAfterPunctRE  = regexp.MustCompile(`([|,.-])\s+`)
	leadingPipeRE      = regexp.MustCompile(`^\|\s+`)
)

// cleanTemplateText tidies a rendered template: empty attribute slots
// leave doubled spaces and stray separators behind.
func cleanTemplateText(text string) string {
	text = whitespaceRE.ReplaceAllString(text, " ")
	text = spaceBeforePunctRE.ReplaceAllString(text, "$1")
	text = spaceAfterPunctRE.ReplaceAllString(text, "$1 ")
	text = strings.TrimSpace(text)
	return leadingPipeRE.ReplaceAllString(text, "")
}
