package taxonomy

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SelectionFromJSON decodes the attribute selection stored on a queue item.
// An empty payload yields a zero selection.
func SelectionFromJSON(payload string) (Selection, error) {
	var sel Selection
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return sel, nil
	}
	if err := json.Unmarshal([]byte(payload), &sel); err != nil {
		return Selection{}, fmt.Errorf("decode attribute selection: %w", err)
	}
	return sel, nil
}

// ToJSON encodes the selection for storage on a queue item.
func (s Selection) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode attribute selection: %w", err)
	}
	return string(data), nil
}

// TranslationMap maps every Ukrainian label in the tree to its label in
// the requested language, covering categories, types, and all list
// options. Keys are returned longest-first so replacement never clips a
// longer term with a shorter prefix.
func (t *Tree) TranslationMap(lang Language) (map[string]string, []string) {
	translations := make(map[string]string)
	add := func(ua, localized string) {
		ua = strings.TrimSpace(ua)
		localized = strings.TrimSpace(localized)
		if ua == "" || localized == "" || ua == localized {
			return
		}
		translations[ua] = localized
	}

	for _, cat := range t.Categories {
		add(cat.NameUA, cat.Label(lang))
		for _, entry := range cat.Types {
			add(entry.NameUA, entry.Label(lang))
		}
	}
	for _, list := range []List{
		t.Lists.Species,
		t.Lists.Finishes,
		t.Lists.Thickness,
		t.Lists.Grades,
		t.Lists.Sizes,
	} {
		for _, opt := range list.Options {
			add(opt.UA, opt.Label(lang))
		}
	}

	keys := make([]string, 0, len(translations))
	for key := range translations {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return translations, keys
}
