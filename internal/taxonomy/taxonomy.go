package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"woodway/internal/translit"
)

//go:embed taxonomy.toml
var embeddedTaxonomy []byte

// Language identifies one of the three catalog languages.
type Language string

const (
	LanguageUA Language = "ua"
	LanguageEN Language = "en"
	LanguageRU Language = "ru"
)

// Languages returns the catalog languages in canonical order.
func Languages() []Language {
	return []Language{LanguageUA, LanguageEN, LanguageRU}
}

// Tree is the validated vocabulary: categories with their product types and
// the shared option lists.
type Tree struct {
	Categories map[string]Category `toml:"categories"`
	Lists      Lists               `toml:"lists"`
}

// Category is one product family (veneer, plywood, ...).
type Category struct {
	NameUA string           `toml:"name_ua"`
	NameEN string           `toml:"name_en"`
	NameRU string           `toml:"name_ru"`
	Slug   string           `toml:"slug"`
	Types  map[string]Entry `toml:"types"`
}

// Entry is a named node with localized labels and a slug.
type Entry struct {
	NameUA string `toml:"name_ua"`
	NameEN string `toml:"name_en"`
	NameRU string `toml:"name_ru"`
	Slug   string `toml:"slug"`
}

// Lists groups the shared vocabularies referenced across categories.
type Lists struct {
	Species   List `toml:"species"`
	Finishes  List `toml:"finishes"`
	Thickness List `toml:"thickness"`
	Grades    List `toml:"grades"`
	Sizes     List `toml:"sizes"`
}

// List is an ordered set of selectable options.
type List struct {
	Options []Option `toml:"options"`
}

// Option is one selectable value with localized labels. Imperial is only
// populated for thickness options that have a customary equivalent.
type Option struct {
	UA       string `toml:"ua"`
	EN       string `toml:"en"`
	RU       string `toml:"ru"`
	Slug     string `toml:"slug"`
	Imperial string `toml:"imperial"`
}

// Load reads and validates a taxonomy tree. An empty path loads the
// embedded vocabulary.
func Load(path string) (*Tree, error) {
	data := embeddedTaxonomy
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy: %w", err)
		}
	}
	var tree Tree
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return &tree, nil
}

// Validate checks every node: slugs must be present and satisfy the
// filename grammar, and slugs must be unique within their list.
func (t *Tree) Validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("taxonomy: no categories defined")
	}
	for key, cat := range t.Categories {
		if err := validateSlug(fmt.Sprintf("category %q", key), cat.Slug); err != nil {
			return err
		}
		seen := make(map[string]string, len(cat.Types))
		for typeKey, entry := range cat.Types {
			where := fmt.Sprintf("category %q type %q", key, typeKey)
			if err := validateSlug(where, entry.Slug); err != nil {
				return err
			}
			if prev, ok := seen[entry.Slug]; ok {
				return fmt.Errorf("taxonomy: category %q types %q and %q share slug %q", key, prev, typeKey, entry.Slug)
			}
			seen[entry.Slug] = typeKey
		}
	}
	for _, lst := range []struct {
		name string
		list List
	}{
		{"species", t.Lists.Species},
		{"finishes", t.Lists.Finishes},
		{"thickness", t.Lists.Thickness},
		{"grades", t.Lists.Grades},
		{"sizes", t.Lists.Sizes},
	} {
		seen := make(map[string]bool, len(lst.list.Options))
		for _, opt := range lst.list.Options {
			if err := validateSlug(fmt.Sprintf("list %q option", lst.name), opt.Slug); err != nil {
				return err
			}
			if seen[opt.Slug] {
				return fmt.Errorf("taxonomy: list %q has duplicate slug %q", lst.name, opt.Slug)
			}
			seen[opt.Slug] = true
		}
	}
	return nil
}

func validateSlug(where, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("taxonomy: %s has no slug", where)
	}
	if !translit.ValidateSlug(slug) {
		return fmt.Errorf("taxonomy: %s slug %q violates the filename grammar", where, slug)
	}
	return nil
}

// CategoryKeys returns the category keys in sorted order.
func (t *Tree) CategoryKeys() []string {
	keys := make([]string, 0, len(t.Categories))
	for key := range t.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CategoryBySlug finds a category by its slug.
func (t *Tree) CategoryBySlug(slug string) (Category, bool) {
	for _, cat := range t.Categories {
		if cat.Slug == slug {
			return cat, true
		}
	}
	return Category{}, false
}

// TypeBySlug finds a product type inside the category identified by
// categorySlug.
func (t *Tree) TypeBySlug(categorySlug, slug string) (Entry, bool) {
	cat, ok := t.CategoryBySlug(categorySlug)
	if !ok {
		return Entry{}, false
	}
	for _, entry := range cat.Types {
		if entry.Slug == slug {
			return entry, true
		}
	}
	return Entry{}, false
}

// OptionBySlug finds an option in the named list.
func (l List) OptionBySlug(slug string) (Option, bool) {
	for _, opt := range l.Options {
		if opt.Slug == slug {
			return opt, true
		}
	}
	return Option{}, false
}

// Label returns the option label in the requested language, falling back
// to a title-cased slug when the label is missing.
func (o Option) Label(lang Language) string {
	var name string
	switch lang {
	case LanguageUA:
		name = o.UA
	case LanguageEN:
		name = o.EN
	case LanguageRU:
		name = o.RU
	}
	if strings.TrimSpace(name) != "" {
		return name
	}
	return FallbackLabel(o.Slug)
}

// Label returns the entry label in the requested language with the same
// fallback rule as Option.Label.
func (e Entry) Label(lang Language) string {
	var name string
	switch lang {
	case LanguageUA:
		name = e.NameUA
	case LanguageEN:
		name = e.NameEN
	case LanguageRU:
		name = e.NameRU
	}
	if strings.TrimSpace(name) != "" {
		return name
	}
	return FallbackLabel(e.Slug)
}

// Label returns the category label in the requested language.
func (c Category) Label(lang Language) string {
	entry := Entry{NameUA: c.NameUA, NameEN: c.NameEN, NameRU: c.NameRU, Slug: c.Slug}
	return entry.Label(lang)
}

var titleCaser = cases.Title(language.English)

// FallbackLabel renders a slug as a human-readable label: hyphens become
// spaces and words are title-cased ("fayn-layn" -> "Fayn Layn").
func FallbackLabel(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}

// ThicknessImperial returns the customary equivalent for a thickness slug,
// or "" when none is recorded.
func (t *Tree) ThicknessImperial(slug string) string {
	opt, ok := t.Lists.Thickness.OptionBySlug(slug)
	if !ok {
		return ""
	}
	return opt.Imperial
}
