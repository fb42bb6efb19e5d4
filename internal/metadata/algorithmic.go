package metadata

import (
	"fmt"
	"strings"

	"woodway/internal/taxonomy"
)

// Algorithmic renders tag bundles from fixed per-language phrase
// templates. Four template sets rotate by batch ordinal so adjacent
// items in a gallery do not carry identical copy. It needs no network
// and always produces a complete bundle.
type Algorithmic struct {
	tree  *taxonomy.Tree
	brand string
}

// NewAlgorithmic builds the local generator. An empty brand falls back
// to the house name used across the templates.
func NewAlgorithmic(tree *taxonomy.Tree, brand string) *Algorithmic {
	if strings.TrimSpace(brand) == "" {
		brand = "WoodWay Expert"
	}
	return &Algorithmic{tree: tree, brand: brand}
}

// Generate renders the bundle for one selection. The ordinal picks the
// template set (ordinal modulo four); Filename is left for the caller.
func (a *Algorithmic) Generate(sel taxonomy.Selection, ordinal int) TagBundle {
	if ordinal < 0 {
		ordinal = 0
	}
	idx := ordinal % 4
	return TagBundle{
		UA: a.render(sel, taxonomy.LanguageUA, idx),
		EN: a.render(sel, taxonomy.LanguageEN, idx),
		RU: a.render(sel, taxonomy.LanguageRU, idx),
	}
}

// templateArgs feed the indexed verbs in every template:
// %[1]s category+type with trailing space, %[2]s species, %[3]s grade,
// %[4]s thickness with imperial, %[5]s brand, %[6]s short brand.
type templateArgs struct {
	categoryProduct string
	species         string
	grade           string
	thickness       string
	hasContent      bool
	tags            TagList
}

func (a *Algorithmic) render(sel taxonomy.Selection, lang taxonomy.Language, idx int) LanguageEntry {
	in := a.buildArgs(sel, lang)
	texts := textsFor(lang)
	if !in.hasContent {
		return LanguageEntry{
			Title:       a.brand,
			AltText:     texts.emptyAlt,
			Description: fmt.Sprintf(texts.emptyDescription, a.brand),
			Tags:        in.tags,
		}
	}
	args := []any{in.categoryProduct, in.species, in.grade, in.thickness, a.brand, shortBrand(a.brand)}
	return LanguageEntry{
		Title:       cleanTemplateText(Truncate(fmt.Sprintf(texts.titles[idx], args...), TitleMaxChars)),
		AltText:     cleanTemplateText(Truncate(fmt.Sprintf(texts.alts[idx], args...), AltTextMaxChars)),
		Description: cleanTemplateText(Truncate(fmt.Sprintf(texts.descriptions[idx], args...), DescriptionMaxChars)),
		Tags:        in.tags,
	}
}

func (a *Algorithmic) buildArgs(sel taxonomy.Selection, lang taxonomy.Language) templateArgs {
	labels := a.tree.SelectionLabels(sel, lang)

	categoryProduct := labels.Category
	if labels.Type != "" {
		if categoryProduct != "" && categoryProduct != labels.Type {
			categoryProduct += " " + labels.Type
		} else {
			categoryProduct = labels.Type
		}
	}

	thickness := labels.Thickness
	if imperial := a.tree.ThicknessImperial(sel.Thickness); imperial != "" && thickness != "" {
		thickness = fmt.Sprintf("%s (%s)", thickness, imperial)
	}

	in := templateArgs{
		species:    labels.Species,
		grade:      labels.Grade,
		thickness:  thickness,
		hasContent: categoryProduct != "" || labels.Species != "" || labels.Grade != "" || thickness != "",
	}
	if categoryProduct != "" {
		in.categoryProduct = categoryProduct + " "
	}

	for _, tag := range []string{labels.Category, labels.Type, labels.Species, labels.Grade} {
		if tag != "" {
			in.tags = append(in.tags, tag)
		}
	}
	in.tags = append(in.tags, a.brand)
	return in
}

func shortBrand(brand string) string {
	if fields := strings.Fields(brand); len(fields) > 0 {
		return fields[0]
	}
	return brand
}

// langTexts holds one language's template set. The rendered strings pass
// through Truncate and cleanTemplateText, so unset attributes collapse
// cleanly instead of leaving doubled spaces.
type langTexts struct {
	titles           [4]string
	alts             [4]string
	descriptions     [4]string
	emptyAlt         string
	emptyDescription string
}

func textsFor(lang taxonomy.Language) langTexts {
	switch lang {
	case taxonomy.LanguageEN:
		return enTexts
	case taxonomy.LanguageRU:
		return ruTexts
	default:
		return uaTexts
	}
}

var uaTexts = langTexts{
	titles: [4]string{
		"%[1]s%[2]s %[4]s | %[5]s",
		"Купити %[1]s%[2]s %[3]s | %[5]s",
		"%[1]s%[2]s %[3]s якість | %[6]s",
		"Преміум %[1]s%[2]s | %[5]s",
	},
	alts: [4]string{
		"Натуральний %[1]s%[2]s з %[3]s ґатунком, показує текстуру дерева",
		"%[1]s%[2]s деревини, товщина %[4]s, високоякісний матеріал",
		"Крупний план %[1]s%[2]s з природним малюнком дерева",
		"Високоякісний %[1]s%[2]s, %[3]s ґатунок, підходить для меблів",
	},
	descriptions: [4]string{
		"Шукаєте %[1]s%[2]s? Преміум %[3]s якість, %[4]s. Ідеально для меблів та інтер'єру. Купіть у %[5]s з доставкою по Україні.",
		"Замовте %[1]s%[2]s онлайн. %[4]s, %[3]s ґатунок. Українська майстерність, висока якість. Швидка доставка. %[5]s.",
		"Купити %[1]s%[2]s - %[3]s якість, %[4]s. Ідеально для професійних проектів. Експертна консультація. %[5]s.",
		"%[1]s%[2]s на продаж. %[4]s, %[3]s. Преміум українські деревинні матеріали. Безкоштовна консультація. Замовте у %[5]s.",
	},
	emptyAlt:         "Деревина",
	emptyDescription: "Купити деревину. Доставка по Україні. %s.",
}

var enTexts = langTexts{
	titles: [4]string{
		"%[1]s%[2]s %[4]s | %[5]s",
		"Buy %[1]s%[2]s %[3]s | %[5]s",
		"%[1]s%[2]s %[3]s Quality | %[6]s",
		"Premium %[1]s%[2]s | %[5]s",
	},
	alts: [4]string{
		"Natural %[1]s%[2]s showing %[3]s grade wood grain and texture",
		"%[1]s%[2]s wood, %[4]s thickness, high quality material",
		"Close-up view of %[1]s%[2]s with natural wood pattern",
		"High-quality %[1]s%[2]s material, %[3]s grade, suitable for furniture",
	},
	descriptions: [4]string{
		"Looking for %[1]s%[2]s? Premium %[3]s quality material, %[4]s. Perfect for furniture and interior design. Buy from %[5]s with delivery across Ukraine.",
		"Order %[1]s%[2]s online. %[4]s, %[3]s grade. Ukrainian craftsmanship, high quality. Fast delivery. %[5]s.",
		"Buy %[1]s%[2]s - %[3]s quality, %[4]s. Ideal for professional projects. Expert advice available. %[5]s.",
		"%[1]s%[2]s for sale. %[4]s, %[3]s. Premium Ukrainian wood products. Free consultation. Order from %[5]s.",
	},
	emptyAlt:         "Wood product",
	emptyDescription: "Buy wood products. Delivery in Ukraine. %s.",
}

var ruTexts = langTexts{
	titles: [4]string{
		"%[1]s%[2]s %[4]s | %[5]s",
		"Купить %[1]s%[2]s %[3]s | %[5]s",
		"%[1]s%[2]s %[3]s качество | %[6]s",
		"Премиум %[1]s%[2]s | %[5]s",
	},
	alts: [4]string{
		"Натуральный %[1]s%[2]s сорт %[3]s, показывает текстуру дерева",
		"%[1]s%[2]s древесины, толщина %[4]s, высококачественный материал",
		"Крупный план %[1]s%[2]s с природным рисунком дерева",
		"Высококачественный %[1]s%[2]s, %[3]s сорт, подходит для мебели",
	},
	descriptions: [4]string{
		"Ищете %[1]s%[2]s? Премиум %[3]s качество, %[4]s. Идеально для мебели и интерьера. Купите у %[5]s с доставкой по Украине.",
		"Закажите %[1]s%[2]s онлайн. %[4]s, %[3]s сорт. Украинское мастерство, высокое качество. Быстрая доставка. %[5]s.",
		"Купить %[1]s%[2]s - %[3]s качество, %[4]s. Идеально для профессиональных проектов. Экспертная консультация. %[5]s.",
		"%[1]s%[2]s в продаже. %[4]s, %[3]s. Премиум украинские древесные материалы. Бесплатная консультация. Закажите у %[5]s.",
	},
	emptyAlt:         "Древесина",
	emptyDescription: "Купить древесину. Доставка по Украине. %s.",
}
