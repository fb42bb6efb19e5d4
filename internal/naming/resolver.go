package naming

import (
	"fmt"
	"strconv"
	"strings"

	"woodway/internal/config"
	"woodway/internal/services"
	"woodway/internal/taxonomy"
	"woodway/internal/translit"
)

// Attribute slugs join in this fixed order regardless of the order an
// operator picked them in, so the same selection always yields the same
// base name.
var tokenOrder = []func(taxonomy.Selection) string{
	func(s taxonomy.Selection) string { return s.Category },
	func(s taxonomy.Selection) string { return s.ProductType },
	func(s taxonomy.Selection) string { return s.Species },
	func(s taxonomy.Selection) string { return s.Finish },
	func(s taxonomy.Selection) string { return s.Thickness },
	func(s taxonomy.Selection) string { return s.Size },
	func(s taxonomy.Selection) string { return s.Grade },
	func(s taxonomy.Selection) string { return translit.Slugify(s.Extra) },
}

var allowedExts = map[string]bool{
	"webp": true,
	"jpg":  true,
	"png":  true,
	"mp4":  true,
	"webm": true,
}

var videoExts = map[string]bool{
	"mp4":  true,
	"webm": true,
}

// Options controls numbering, collision limits, and base length for a
// planning pass.
type Options struct {
	NumberingEnabled   bool
	NumberingTemplate  string
	NumberingWidth     int
	MaxCollisionSuffix int
	MaxBaseLength      int
}

// OptionsFromConfig copies the naming settings out of the loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		NumberingEnabled:   cfg.Naming.NumberingEnabled,
		NumberingTemplate:  cfg.Naming.NumberingTemplate,
		NumberingWidth:     cfg.Naming.NumberingWidth,
		MaxCollisionSuffix: cfg.Naming.MaxCollisionSuffix,
		MaxBaseLength:      cfg.Naming.MaxBaseLength,
	}
}

// Resolver plans final filenames for a batch. It holds a snapshot of the
// names already present in the output directory plus every name reserved
// during this planning pass, so resolving items in ordinal order yields
// the same suffixes on every run against the same directory state.
//
// A resolver is not safe for concurrent use; the planning pass runs on a
// single goroutine before items are handed to workers.
type Resolver struct {
	opts  Options
	taken map[string]struct{}
}

// NewResolver builds a resolver seeded with the filenames that already
// exist in the output directory. Comparison is case-insensitive.
func NewResolver(opts Options, existing []string) *Resolver {
	if opts.NumberingTemplate == "" {
		opts.NumberingTemplate = "{base}-{nn}"
	}
	if opts.NumberingWidth <= 0 {
		opts.NumberingWidth = 2
	}
	if opts.MaxCollisionSuffix < 2 {
		opts.MaxCollisionSuffix = 99
	}
	if opts.MaxBaseLength <= 0 {
		opts.MaxBaseLength = 80
	}
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			taken[name] = struct{}{}
		}
	}
	return &Resolver{opts: opts, taken: taken}
}

// Resolve plans the filename for one item and reserves it so later items
// in the same pass cannot take it. The ordinal is the item's zero-based
// position in the batch; ext is the conversion target extension without
// a dot.
func (r *Resolver) Resolve(sel taxonomy.Selection, ordinal int, ext string) (Result, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if !allowedExts[ext] {
		return Result{}, fmt.Errorf("%w: output extension %q is not one of webp, jpg, png, mp4, webm", services.ErrValidation, ext)
	}

	base := buildBase(sel, ext)
	base = truncateBase(base, r.opts.MaxBaseLength)

	res := Result{Base: base, Ext: ext}
	stem := base
	if r.opts.NumberingEnabled {
		res.Number = ordinal + 1
		stem = renderNumbered(r.opts.NumberingTemplate, base, res.Number, r.opts.NumberingWidth)
	}

	final, suffix, err := r.reserve(stem, ext)
	if err != nil {
		return Result{}, err
	}
	res.Final = final
	res.CollisionSuffix = suffix
	return res, nil
}

// Reserve marks a filename as taken without planning it, for callers
// that discover occupied names outside the planning pass.
func (r *Resolver) Reserve(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		r.taken[name] = struct{}{}
	}
}

func (r *Resolver) reserve(stem, ext string) (string, int, error) {
	candidate := stem + "." + ext
	if r.claim(candidate) {
		return candidate, 0, nil
	}
	for n := 2; n <= r.opts.MaxCollisionSuffix; n++ {
		candidate = stem + "-" + strconv.Itoa(n) + "." + ext
		if r.claim(candidate) {
			return candidate, n, nil
		}
	}
	return "", 0, fmt.Errorf("%w: no free suffix for %q within -2..-%d", services.ErrNamingExhausted, stem+"."+ext, r.opts.MaxCollisionSuffix)
}

func (r *Resolver) claim(name string) bool {
	key := strings.ToLower(name)
	if _, ok := r.taken[key]; ok {
		return false
	}
	r.taken[key] = struct{}{}
	return true
}

func buildBase(sel taxonomy.Selection, ext string) string {
	tokens := make([]string, 0, len(tokenOrder))
	for _, pick := range tokenOrder {
		if tok := pick(sel); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		if videoExts[ext] {
			return "video"
		}
		return "image"
	}
	return strings.Join(tokens, "-")
}

// truncateBase cuts an over-long base at the last hyphen when that keeps
// at least 70% of the limit, otherwise mid-token.
func truncateBase(base string, max int) string {
	if len(base) <= max {
		return base
	}
	cut := base[:max]
	if idx := strings.LastIndex(cut, "-"); idx > int(float64(max)*0.7) {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, "-")
}

func renderNumbered(template, base string, number, width int) string {
	nn := fmt.Sprintf("%0*d", width, number)
	out := strings.ReplaceAll(template, "{base}", base)
	if strings.Contains(out, "{nn}") {
		return strings.ReplaceAll(out, "{nn}", nn)
	}
	return out + "-" + nn
}
