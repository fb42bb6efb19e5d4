package metadata

import (
	"fmt"
	"strings"
	"time"

	"woodway/internal/queue"
	"woodway/internal/taxonomy"
)

// PromptBuilder assembles generative request text. The product context
// block carries the Ukrainian labels together with their EN/RU
// translations so the model does not invent its own terminology.
type PromptBuilder struct {
	tree  *taxonomy.Tree
	brand string
}

func NewPromptBuilder(tree *taxonomy.Tree, brand string) *PromptBuilder {
	if strings.TrimSpace(brand) == "" {
		brand = "WoodWay Expert"
	}
	return &PromptBuilder{tree: tree, brand: brand}
}

// Build renders the prompt for one item. Image and video prompts share
// the response schema and differ only in the analysis instructions.
func (p *PromptBuilder) Build(item ItemContext) string {
	ctx := p.contextBlock(item)
	if item.MediaKind == queue.KindVideo {
		return fmt.Sprintf(videoPrompt, p.brand, ctx)
	}
	return fmt.Sprintf(imagePrompt, p.brand, ctx)
}

func (p *PromptBuilder) contextBlock(item ItemContext) string {
	sel := item.Selection
	ua := p.tree.SelectionLabels(sel, taxonomy.LanguageUA)
	en := p.tree.SelectionLabels(sel, taxonomy.LanguageEN)
	ru := p.tree.SelectionLabels(sel, taxonomy.LanguageRU)

	var lines []string
	trio := func(label, uaName, enName, ruName string) {
		if uaName == "" {
			return
		}
		lines = append(lines, fmt.Sprintf("%s: %s (EN: %s, RU: %s)", label, uaName, enName, ruName))
	}
	trio("Category", ua.Category, en.Category, ru.Category)
	trio("Type", ua.Type, en.Type, ru.Type)
	trio("Wood Species", ua.Species, en.Species, ru.Species)
	trio("Finish", ua.Finish, en.Finish, ru.Finish)
	if ua.Thickness != "" {
		if imperial := p.tree.ThicknessImperial(sel.Thickness); imperial != "" {
			lines = append(lines, fmt.Sprintf("Thickness: %s (%s)", ua.Thickness, imperial))
		} else {
			lines = append(lines, "Thickness: "+ua.Thickness)
		}
	}
	if ua.Size != "" {
		lines = append(lines, "Size: "+ua.Size)
	}
	trio("Grade", ua.Grade, en.Grade, ru.Grade)
	if item.Filename != "" {
		lines = append(lines, "Target filename: "+item.Filename)
	}
	if item.MediaKind == queue.KindVideo && item.Duration > 0 {
		lines = append(lines, "Duration: "+formatClipDuration(item.Duration))
	}
	if len(lines) == 0 {
		if item.MediaKind == queue.KindVideo {
			return "General wood product video"
		}
		return "General wood product"
	}
	return strings.Join(lines, "\n")
}

func formatClipDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	if minutes := total / 60; minutes > 0 {
		return fmt.Sprintf("%d:%02d", minutes, total%60)
	}
	return fmt.Sprintf("%ds", total)
}

const imagePrompt = `You are a senior SEO specialist for %[1]s, a premium Ukrainian wood products company specializing in high-quality lumber, veneer, and wood materials for professional woodworkers and furniture manufacturers.

PRODUCT CONTEXT:
%[2]s

YOUR TASK: Analyze this product image and generate SEO-optimized metadata in THREE languages (Ukrainian, English, Russian).

LANGUAGE REQUIREMENTS:
- "ua" section: ONLY Ukrainian
- "en" section: ONLY English, translate ALL terms
- "ru" section: ONLY Russian, translate ALL terms
- Use the translations provided in parentheses above
- NEVER mix languages within a section

IMAGE ANALYSIS:
Describe what is actually visible: the wood grain pattern, color tones, surface texture, and visible features such as knots, figure, or sapwood. Do not invent details the image does not show.

FIELD REQUIREMENTS:
1. alt_text (80-125 characters): describe what the image shows, naming the category, type, and species naturally. Never start with "image of" or "picture of".
2. title (50-60 characters): start with category, type, and species, include one key specification, end with "| %[1]s".
3. description (140-160 characters): say what the product is and why to buy it, include specs such as thickness and grade, end with a call to action.
4. tags (5-7 entries): category, type, species, grade, thickness, "%[1]s", and a use case such as furniture or interior.

Return ONLY valid JSON (no markdown, no code blocks):
{
  "ua": {"alt_text": "...", "title": "...", "description": "...", "tags": ["..."]},
  "en": {"alt_text": "...", "title": "...", "description": "...", "tags": ["..."]},
  "ru": {"alt_text": "...", "title": "...", "description": "...", "tags": ["..."]}
}`

const videoPrompt = `You are a senior SEO specialist for %[1]s, a premium Ukrainian wood products company specializing in high-quality lumber, veneer, and wood materials.

PRODUCT VIDEO CONTEXT:
%[2]s

YOUR TASK: Analyze this product video and generate SEO-optimized metadata in THREE languages (Ukrainian, English, Russian).

LANGUAGE REQUIREMENTS:
- "ua" section: ONLY Ukrainian
- "en" section: ONLY English, translate ALL terms
- "ru" section: ONLY Russian, translate ALL terms
- Use the translations provided in parentheses above
- NEVER mix languages within a section

VIDEO ANALYSIS:
Describe what the video shows: the wood product presented, the quality and characteristics visible, and the key selling points that would appeal to woodworkers.

FIELD REQUIREMENTS:
1. alt_text (80-125 characters): describe the video poster frame, naming the product shown and its visual characteristics.
2. title (50-60 characters): start with category, type, and species, include a key specification, end with "| %[1]s".
3. description (140-160 characters): say what viewers will see, include specs such as thickness and grade, end with a call to action.
4. tags (6-8 entries): category, type, species, grade, thickness, "%[1]s", and use cases such as furniture or woodworking.

Return ONLY valid JSON (no markdown, no code blocks):
{
  "ua": {"alt_text": "...", "title": "...", "description": "...", "tags": ["..."]},
  "en": {"alt_text": "...", "title": "...", "description": "...", "tags": ["..."]},
  "ru": {"alt_text": "...", "title": "...", "description": "...", "tags": ["..."]}
}`
