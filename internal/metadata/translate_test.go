package metadata_test

import (
	"testing"

	"woodway/internal/metadata"
)

func TestLocalizeRewritesLeakedTerms(t *testing.T) {
	translator := metadata.NewTranslator(loadTree(t))

	bundle := validBundle()
	bundle.EN.Title = "Шпон Дуб 0.6 мм| WoodWay Expert"
	bundle.EN.Description = "Buy Фанера ФСФ 2500x1250 мм sheets, Перший сорт quality. Order from WoodWay Expert today."
	bundle.EN.Tags = metadata.TagList{"Шпон", "Дуб", "Перший сорт", "WoodWay Expert"}
	translator.Localize(&bundle)

	if got, want := bundle.EN.Title, "Veneer Oak 0.6 mm| WoodWay Expert"; got != want {
		t.Errorf("EN title = %q, want %q", got, want)
	}
	if got, want := bundle.EN.Description, "Buy Plywood FSF 2500x1250 mm sheets, First grade quality. Order from WoodWay Expert today."; got != want {
		t.Errorf("EN description = %q, want %q", got, want)
	}
	if got, want := bundle.EN.Tags.Join(), "Veneer, Oak, First grade, WoodWay Expert"; got != want {
		t.Errorf("EN tags = %q, want %q", got, want)
	}
}

func TestLocalizeUsesPerLanguageVocabulary(t *testing.T) {
	translator := metadata.NewTranslator(loadTree(t))

	bundle := validBundle()
	bundle.RU.AltText = "Береза Перший сорт с выразительной текстурой"
	translator.Localize(&bundle)

	if got, want := bundle.RU.AltText, "Берёза Первый сорт с выразительной текстурой"; got != want {
		t.Errorf("RU alt = %q, want %q", got, want)
	}
}

func TestLocalizeLeavesUASectionAlone(t *testing.T) {
	translator := metadata.NewTranslator(loadTree(t))

	bundle := validBundle()
	before := bundle.UA
	translator.Localize(&bundle)

	if bundle.UA.AltText != before.AltText || bundle.UA.Title != before.Title {
		t.Errorf("UA section changed: %+v", bundle.UA)
	}
}

func TestLocalizeToleratesNil(t *testing.T) {
	var translator *metadata.Translator
	bundle := validBundle()
	translator.Localize(&bundle)
	metadata.NewTranslator(loadTree(t)).Localize(nil)
}
