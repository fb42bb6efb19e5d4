package main

import (
	"strings"

	"github.com/spf13/cobra"

	"woodway/internal/taxonomy"
)

// selectionFlags carries the attribute slugs shared by process and watch.
type selectionFlags struct {
	category  string
	prodType  string
	species   string
	finish    string
	thickness string
	size      string
	grade     string
	extra     string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.category, "category", "", "Category slug (e.g. shpon)")
	flags.StringVar(&f.prodType, "type", "", "Product type slug within the category")
	flags.StringVar(&f.species, "species", "", "Wood species slug")
	flags.StringVar(&f.finish, "finish", "", "Finish slug")
	flags.StringVar(&f.thickness, "thickness", "", "Thickness slug")
	flags.StringVar(&f.size, "size", "", "Size slug")
	flags.StringVar(&f.grade, "grade", "", "Grade slug")
	flags.StringVar(&f.extra, "extra", "", "Free-form attribute appended to the name")
}

func (f *selectionFlags) selection() taxonomy.Selection {
	return taxonomy.Selection{
		Category:    strings.TrimSpace(f.category),
		ProductType: strings.TrimSpace(f.prodType),
		Species:     strings.TrimSpace(f.species),
		Finish:      strings.TrimSpace(f.finish),
		Thickness:   strings.TrimSpace(f.thickness),
		Size:        strings.TrimSpace(f.size),
		Grade:       strings.TrimSpace(f.grade),
		Extra:       strings.TrimSpace(f.extra),
	}
}
