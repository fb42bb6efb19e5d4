package metadata

import (
	"strings"

	"woodway/internal/taxonomy"
)

// Translator replaces Ukrainian vocabulary terms that leak into the
// English and Russian sections of a generative response. Replacement
// runs longest term first so compound names are not partially rewritten.
type Translator struct {
	en langReplacements
	ru langReplacements
}

type langReplacements struct {
	terms map[string]string
	order []string
}

// NewTranslator snapshots the vocabulary translations once; the
// taxonomy is immutable for the process lifetime.
func NewTranslator(tree *taxonomy.Tree) *Translator {
	enTerms, enOrder := tree.TranslationMap(taxonomy.LanguageEN)
	ruTerms, ruOrder := tree.TranslationMap(taxonomy.LanguageRU)
	return &Translator{
		en: langReplacements{terms: enTerms, order: enOrder},
		ru: langReplacements{terms: ruTerms, order: ruOrder},
	}
}

// Localize rewrites the EN and RU sections in place. The UA section is
// never touched.
func (t *Translator) Localize(bundle *TagBundle) {
	if t == nil || bundle == nil {
		return
	}
	localizeEntry(&bundle.EN, t.en)
	localizeEntry(&bundle.RU, t.ru)
}

func localizeEntry(entry *LanguageEntry, repl langReplacements) {
	entry.AltText = replaceTerms(entry.AltText, repl)
	entry.Title = replaceTerms(entry.Title, repl)
	entry.Description = replaceTerms(entry.Description, repl)
	for i, tag := range entry.Tags {
		entry.Tags[i] = replaceTerms(tag, repl)
	}
}

func replaceTerms(text string, repl langReplacements) string {
	if text == "" {
		return text
	}
	for _, term := range repl.order {
		if strings.Contains(text, term) {
			text = strings.ReplaceAll(text, term, repl.terms[term])
		}
	}
	return text
}
