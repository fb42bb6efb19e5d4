package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"woodway/internal/services"
	"woodway/internal/taxonomy"
)

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	taxonomyCmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Browse the product vocabulary",
	}

	taxonomyCmd.AddCommand(newTaxonomyListCommand(ctx))
	taxonomyCmd.AddCommand(newTaxonomyShowCommand(ctx))
	return taxonomyCmd
}

func (c *commandContext) loadTaxonomy() (*taxonomy.Tree, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return taxonomy.Load(cfg.Paths.TaxonomyPath)
}

type taxonomyTypeView struct {
	Key  string `json:"key"`
	Slug string `json:"slug"`
	UA   string `json:"ua"`
	EN   string `json:"en"`
	RU   string `json:"ru"`
}

type taxonomyCategoryView struct {
	Key   string             `json:"key"`
	Slug  string             `json:"slug"`
	UA    string             `json:"ua"`
	EN    string             `json:"en"`
	RU    string             `json:"ru"`
	Types []taxonomyTypeView `json:"types"`
}

type taxonomyOptionView struct {
	Slug     string `json:"slug"`
	UA       string `json:"ua"`
	EN       string `json:"en"`
	RU       string `json:"ru"`
	Imperial string `json:"imperial,omitempty"`
}

func buildCategoryViews(tree *taxonomy.Tree) []taxonomyCategoryView {
	views := make([]taxonomyCategoryView, 0, len(tree.Categories))
	for _, key := range tree.CategoryKeys() {
		category := tree.Categories[key]
		view := taxonomyCategoryView{
			Key:  key,
			Slug: category.Slug,
			UA:   category.NameUA,
			EN:   category.NameEN,
			RU:   category.NameRU,
		}
		typeKeys := make([]string, 0, len(category.Types))
		for typeKey := range category.Types {
			typeKeys = append(typeKeys, typeKey)
		}
		sort.Strings(typeKeys)
		for _, typeKey := range typeKeys {
			entry := category.Types[typeKey]
			view.Types = append(view.Types, taxonomyTypeView{
				Key:  typeKey,
				Slug: entry.Slug,
				UA:   entry.NameUA,
				EN:   entry.NameEN,
				RU:   entry.NameRU,
			})
		}
		views = append(views, view)
	}
	return views
}

func buildOptionViews(list taxonomy.List) []taxonomyOptionView {
	views := make([]taxonomyOptionView, 0, len(list.Options))
	for _, option := range list.Options {
		views = append(views, taxonomyOptionView{
			Slug:     option.Slug,
			UA:       option.UA,
			EN:       option.EN,
			RU:       option.RU,
			Imperial: option.Imperial,
		})
	}
	return views
}

// listByName maps a shared list name to its vocabulary.
func listByName(tree *taxonomy.Tree, name string) (taxonomy.List, bool) {
	switch name {
	case "species":
		return tree.Lists.Species, true
	case "finishes":
		return tree.Lists.Finishes, true
	case "thickness":
		return tree.Lists.Thickness, true
	case "grades":
		return tree.Lists.Grades, true
	case "sizes":
		return tree.Lists.Sizes, true
	default:
		return taxonomy.List{}, false
	}
}

func newTaxonomyListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and shared option lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := ctx.loadTaxonomy()
			if err != nil {
				return err
			}
			categories := buildCategoryViews(tree)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"categories": categories,
					"lists": map[string]int{
						"species":   len(tree.Lists.Species.Options),
						"finishes":  len(tree.Lists.Finishes.Options),
						"thickness": len(tree.Lists.Thickness.Options),
						"grades":    len(tree.Lists.Grades.Options),
						"sizes":     len(tree.Lists.Sizes.Options),
					},
				})
			}

			out := cmd.OutOrStdout()
			printSectionHeader(out, "Categories")
			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				rows = append(rows, []string{
					category.Key,
					category.Slug,
					category.UA,
					category.EN,
					fmt.Sprintf("%d", len(category.Types)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Slug", "UA", "EN", "Types"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))

			printSectionHeader(out, "Lists")
			listRows := [][]string{
				{"species", fmt.Sprintf("%d", len(tree.Lists.Species.Options))},
				{"finishes", fmt.Sprintf("%d", len(tree.Lists.Finishes.Options))},
				{"thickness", fmt.Sprintf("%d", len(tree.Lists.Thickness.Options))},
				{"grades", fmt.Sprintf("%d", len(tree.Lists.Grades.Options))},
				{"sizes", fmt.Sprintf("%d", len(tree.Lists.Sizes.Options))},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"List", "Options"},
				listRows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newTaxonomyShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <category|list>",
		Short: "Show one category's types or one list's options",
		Long: `Show one category's types or one list's options.

The argument is a category key or slug (veneer, plywood, ...) or one of
the shared lists: species, finishes, thickness, grades, sizes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := ctx.loadTaxonomy()
			if err != nil {
				return err
			}
			name := args[0]
			out := cmd.OutOrStdout()

			if list, ok := listByName(tree, name); ok {
				options := buildOptionViews(list)
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"list": name, "options": options})
				}
				headers := []string{"Slug", "UA", "EN", "RU"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}
				withImperial := name == "thickness"
				if withImperial {
					headers = append(headers, "Imperial")
					aligns = append(aligns, alignLeft)
				}
				rows := make([][]string, 0, len(options))
				for _, option := range options {
					row := []string{option.Slug, option.UA, option.EN, option.RU}
					if withImperial {
						row = append(row, option.Imperial)
					}
					rows = append(rows, row)
				}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			}

			category, ok := tree.Categories[name]
			if !ok {
				category, ok = tree.CategoryBySlug(name)
			}
			if !ok {
				return fmt.Errorf("%w: unknown category or list %q", services.ErrValidation, name)
			}
			if ctx.JSONMode() {
				for _, view := range buildCategoryViews(tree) {
					if view.Slug == category.Slug {
						return writeJSON(cmd, view)
					}
				}
				return nil
			}

			fmt.Fprintf(out, "%s (%s / %s / %s)\n\n", category.Slug, category.NameUA, category.NameEN, category.NameRU)
			typeKeys := make([]string, 0, len(category.Types))
			for key := range category.Types {
				typeKeys = append(typeKeys, key)
			}
			sort.Strings(typeKeys)
			rows := make([][]string, 0, len(typeKeys))
			for _, key := range typeKeys {
				entry := category.Types[key]
				rows = append(rows, []string{entry.Slug, entry.NameUA, entry.NameEN, entry.NameRU})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Slug", "UA", "EN", "RU"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
