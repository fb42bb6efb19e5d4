package taxonomy

import (
	"fmt"
	"strings"

	"woodway/internal/translit"
)

// Selection captures the attribute choices for one media item. Each field
// holds a slug from the corresponding vocabulary; empty fields are omitted
// from naming and metadata. Extra is free text and is slugified rather
// than validated against a list.
type Selection struct {
	Category    string `json:"category,omitempty"`
	ProductType string `json:"product_type,omitempty"`
	Species     string `json:"species,omitempty"`
	Finish      string `json:"finish,omitempty"`
	Thickness   string `json:"thickness,omitempty"`
	Size        string `json:"size,omitempty"`
	Grade       string `json:"grade,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

// IsZero reports whether no attribute is set.
func (s Selection) IsZero() bool {
	return s == Selection{}
}

// ValidateSelection checks every populated field against the tree. The
// first unknown value is reported with its field name; ProductType
// requires Category to be set.
func (t *Tree) ValidateSelection(sel Selection) error {
	if sel.Category != "" {
		if _, ok := t.CategoryBySlug(sel.Category); !ok {
			return fmt.Errorf("unknown category %q", sel.Category)
		}
	}
	if sel.ProductType != "" {
		if sel.Category == "" {
			return fmt.Errorf("product type %q requires a category", sel.ProductType)
		}
		if _, ok := t.TypeBySlug(sel.Category, sel.ProductType); !ok {
			return fmt.Errorf("unknown product type %q in category %q", sel.ProductType, sel.Category)
		}
	}
	for _, field := range []struct {
		name string
		slug string
		list List
	}{
		{"species", sel.Species, t.Lists.Species},
		{"finish", sel.Finish, t.Lists.Finishes},
		{"thickness", sel.Thickness, t.Lists.Thickness},
		{"grade", sel.Grade, t.Lists.Grades},
		{"size", sel.Size, t.Lists.Sizes},
	} {
		if field.slug == "" {
			continue
		}
		if _, ok := field.list.OptionBySlug(field.slug); !ok {
			return fmt.Errorf("unknown %s %q", field.name, field.slug)
		}
	}
	if sel.Extra != "" && translit.Slugify(sel.Extra) == "" {
		return fmt.Errorf("extra %q yields an empty slug", sel.Extra)
	}
	return nil
}

// Labels carries the localized display names for one selection in one
// language. Unset attributes stay empty.
type Labels struct {
	Category  string
	Type      string
	Species   string
	Finish    string
	Thickness string
	Size      string
	Grade     string
	Extra     string
}

// SelectionLabels resolves the localized labels for a selection. Unknown
// slugs fall back to their title-cased form so metadata generation never
// fails on vocabulary drift.
func (t *Tree) SelectionLabels(sel Selection, lang Language) Labels {
	labels := Labels{Extra: strings.TrimSpace(sel.Extra)}
	if sel.Category != "" {
		if cat, ok := t.CategoryBySlug(sel.Category); ok {
			labels.Category = cat.Label(lang)
		} else {
			labels.Category = FallbackLabel(sel.Category)
		}
	}
	if sel.ProductType != "" {
		if entry, ok := t.TypeBySlug(sel.Category, sel.ProductType); ok {
			labels.Type = entry.Label(lang)
		} else {
			labels.Type = FallbackLabel(sel.ProductType)
		}
	}
	labels.Species = listLabel(t.Lists.Species, sel.Species, lang)
	labels.Finish = listLabel(t.Lists.Finishes, sel.Finish, lang)
	labels.Thickness = listLabel(t.Lists.Thickness, sel.Thickness, lang)
	labels.Size = listLabel(t.Lists.Sizes, sel.Size, lang)
	labels.Grade = listLabel(t.Lists.Grades, sel.Grade, lang)
	return labels
}

func listLabel(list List, slug string, lang Language) string {
	if slug == "" {
		return ""
	}
	if opt, ok := list.OptionBySlug(slug); ok {
		return opt.Label(lang)
	}
	return FallbackLabel(slug)
}
