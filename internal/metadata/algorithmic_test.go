package metadata_test

import (
	"testing"
	"unicode/utf8"

	"woodway/internal/metadata"
	"woodway/internal/taxonomy"
)

func loadTree(t *testing.T) *taxonomy.Tree {
	t.Helper()
	tree, err := taxonomy.Load("")
	if err != nil {
		t.Fatalf("load embedded taxonomy: %v", err)
	}
	return tree
}

func fullSelection() taxonomy.Selection {
	return taxonomy.Selection{
		Category:    "fanera",
		ProductType: "fsf",
		Species:     "bereza",
		Thickness:   "18mm",
		Grade:       "pershyy-sort",
	}
}

func TestAlgorithmicRendersLocalizedTemplates(t *testing.T) {
	algo := metadata.NewAlgorithmic(loadTree(t), "WoodWay Expert")
	bundle := algo.Generate(fullSelection(), 0)

	if got, want := bundle.UA.Title, "Фанера ФСФ Береза 18 мм (3/4 in)| WoodWay Expert"; got != want {
		t.Errorf("UA title = %q, want %q", got, want)
	}
	if got, want := bundle.EN.Title, "Plywood FSF Birch 18 mm (3/4 in)| WoodWay Expert"; got != want {
		t.Errorf("EN title = %q, want %q", got, want)
	}
	if got, want := bundle.RU.Title, "Фанера ФСФ Берёза 18 мм (3/4 in)| WoodWay Expert"; got != want {
		t.Errorf("RU title = %q, want %q", got, want)
	}
	if got, want := bundle.UA.Tags.Join(), "Фанера, ФСФ, Береза, Перший сорт, WoodWay Expert"; got != want {
		t.Errorf("UA tags = %q, want %q", got, want)
	}
	if got, want := bundle.EN.Tags.Join(), "Plywood, FSF, Birch, First grade, WoodWay Expert"; got != want {
		t.Errorf("EN tags = %q, want %q", got, want)
	}
	if err := bundle.Validate(); err != nil {
		t.Errorf("bundle invalid: %v", err)
	}
}

func TestAlgorithmicRotatesTemplatesByOrdinal(t *testing.T) {
	algo := metadata.NewAlgorithmic(loadTree(t), "WoodWay Expert")
	sel := fullSelection()

	titles := make(map[string]int)
	for ordinal := 0; ordinal < 4; ordinal++ {
		bundle := algo.Generate(sel, ordinal)
		titles[bundle.UA.Title] = ordinal
	}
	if len(titles) != 4 {
		t.Fatalf("expected 4 distinct titles across the rotation, got %d: %v", len(titles), titles)
	}

	if first, fifth := algo.Generate(sel, 0), algo.Generate(sel, 4); first.UA.Title != fifth.UA.Title {
		t.Errorf("ordinal 4 should wrap to template 0: %q vs %q", first.UA.Title, fifth.UA.Title)
	}
}

func TestAlgorithmicRespectsLimitsForEveryTemplate(t *testing.T) {
	algo := metadata.NewAlgorithmic(loadTree(t), "WoodWay Expert")
	sel := taxonomy.Selection{
		Category:    "pylomaterialy",
		ProductType: "doshka",
		Species:     "horikh",
		Finish:      "shlifovanyy",
		Thickness:   "50mm",
		Size:        "3050x1220",
		Grade:       "ekstra",
		Extra:       "Сушена камерним способом",
	}
	for ordinal := 0; ordinal < 4; ordinal++ {
		bundle := algo.Generate(sel, ordinal)
		for _, section := range []struct {
			lang  string
			entry metadata.LanguageEntry
		}{
			{"ua", bundle.UA},
			{"en", bundle.EN},
			{"ru", bundle.RU},
		} {
			if n := utf8.RuneCountInString(section.entry.Title); n > metadata.TitleMaxChars {
				t.Errorf("ordinal %d %s title is %d runes: %q", ordinal, section.lang, n, section.entry.Title)
			}
			if n := utf8.RuneCountInString(section.entry.AltText); n > metadata.AltTextMaxChars {
				t.Errorf("ordinal %d %s alt_text is %d runes", ordinal, section.lang, n)
			}
			if n := utf8.RuneCountInString(section.entry.Description); n > metadata.DescriptionMaxChars {
				t.Errorf("ordinal %d %s description is %d runes", ordinal, section.lang, n)
			}
		}
	}
}

func TestAlgorithmicEmptySelectionFallsBack(t *testing.T) {
	algo := metadata.NewAlgorithmic(loadTree(t), "WoodWay Expert")
	bundle := algo.Generate(taxonomy.Selection{}, 0)

	if bundle.UA.Title != "WoodWay Expert" || bundle.UA.AltText != "Деревина" {
		t.Errorf("UA fallback = (%q, %q)", bundle.UA.Title, bundle.UA.AltText)
	}
	if bundle.EN.AltText != "Wood product" {
		t.Errorf("EN fallback alt = %q", bundle.EN.AltText)
	}
	if bundle.RU.AltText != "Древесина" {
		t.Errorf("RU fallback alt = %q", bundle.RU.AltText)
	}
	if got, want := bundle.UA.Tags.Join(), "WoodWay Expert"; got != want {
		t.Errorf("fallback tags = %q, want %q", got, want)
	}
	if err := bundle.Validate(); err != nil {
		t.Errorf("fallback bundle invalid: %v", err)
	}
}

func TestAlgorithmicVeneerWithoutGrade(t *testing.T) {
	algo := metadata.NewAlgorithmic(loadTree(t), "WoodWay Expert")
	sel := taxonomy.Selection{Category: "shpon", Species: "dub", Thickness: "0.6mm"}
	bundle := algo.Generate(sel, 1)

	if got, want := bundle.UA.Title, "Купити Шпон Дуб| WoodWay Expert"; got != want {
		t.Errorf("UA title = %q, want %q", got, want)
	}
	if got, want := bundle.EN.Title, "Buy Veneer Oak| WoodWay Expert"; got != want {
		t.Errorf("EN title = %q, want %q", got, want)
	}
	if got, want := bundle.UA.Tags.Join(), "Шпон, Дуб, WoodWay Expert"; got != want {
		t.Errorf("UA tags = %q, want %q", got, want)
	}
}
