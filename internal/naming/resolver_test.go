package naming_test

import (
	"errors"
	"strings"
	"testing"

	"woodway/internal/naming"
	"woodway/internal/services"
	"woodway/internal/taxonomy"
	"woodway/internal/translit"
)

func TestResolveJoinsTokensInCanonicalOrder(t *testing.T) {
	tests := []struct {
		name string
		sel  taxonomy.Selection
		ext  string
		want string
	}{
		{
			name: "category and species",
			sel:  taxonomy.Selection{Category: "shpon", Species: "dub"},
			ext:  "webp",
			want: "shpon-dub.webp",
		},
		{
			name: "plywood with type and thickness",
			sel:  taxonomy.Selection{Category: "fanera", ProductType: "fsf", Species: "bereza", Thickness: "18mm"},
			ext:  "webp",
			want: "fanera-fsf-bereza-18mm.webp",
		},
		{
			name: "full selection with transliterated extra",
			sel: taxonomy.Selection{
				Category:    "fanera",
				ProductType: "fsf",
				Species:     "bereza",
				Finish:      "shlifovanyy",
				Thickness:   "18mm",
				Size:        "2500x1250",
				Grade:       "pershyy-sort",
				Extra:       "Вологостійка",
			},
			ext:  "jpg",
			want: "fanera-fsf-bereza-shlifovanyy-18mm-2500x1250-pershyy-sort-volohostiyka.jpg",
		},
		{
			name: "dotted thickness token",
			sel:  taxonomy.Selection{Category: "shpon", Species: "dub", Thickness: "0.6mm"},
			ext:  "png",
			want: "shpon-dub-0.6mm.png",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := naming.NewResolver(naming.Options{}, nil)
			res, err := r.Resolve(tc.sel, 0, tc.ext)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Final != tc.want {
				t.Fatalf("Final = %q, want %q", res.Final, tc.want)
			}
			stem := strings.TrimSuffix(res.Final, "."+tc.ext)
			if !translit.ValidateSlug(stem) {
				t.Errorf("stem %q fails slug grammar", stem)
			}
		})
	}
}

func TestResolveEmptySelectionFallsBack(t *testing.T) {
	r := naming.NewResolver(naming.Options{}, nil)

	img, err := r.Resolve(taxonomy.Selection{}, 0, "webp")
	if err != nil {
		t.Fatalf("Resolve image: %v", err)
	}
	if img.Final != "image.webp" {
		t.Errorf("image fallback = %q, want image.webp", img.Final)
	}

	vid, err := r.Resolve(taxonomy.Selection{}, 1, "mp4")
	if err != nil {
		t.Fatalf("Resolve video: %v", err)
	}
	if vid.Final != "video.mp4" {
		t.Errorf("video fallback = %q, want video.mp4", vid.Final)
	}
}

func TestResolveRejectsUnknownExtension(t *testing.T) {
	r := naming.NewResolver(naming.Options{}, nil)
	_, err := r.Resolve(taxonomy.Selection{Category: "shpon"}, 0, "gif")
	if err == nil {
		t.Fatal("expected error for gif extension")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestResolveSuffixesCollisionsInOrdinalOrder(t *testing.T) {
	sel := taxonomy.Selection{Category: "shpon", Species: "dub"}
	r := naming.NewResolver(naming.Options{}, nil)

	want := []struct {
		final  string
		suffix int
	}{
		{"shpon-dub.webp", 0},
		{"shpon-dub-2.webp", 2},
		{"shpon-dub-3.webp", 3},
	}
	for ordinal, w := range want {
		res, err := r.Resolve(sel, ordinal, "webp")
		if err != nil {
			t.Fatalf("Resolve ordinal %d: %v", ordinal, err)
		}
		if res.Final != w.final || res.CollisionSuffix != w.suffix {
			t.Errorf("ordinal %d: got (%q, %d), want (%q, %d)",
				ordinal, res.Final, res.CollisionSuffix, w.final, w.suffix)
		}
	}
}

func TestResolveIsDeterministicAcrossPasses(t *testing.T) {
	sels := []taxonomy.Selection{
		{Category: "shpon", Species: "dub"},
		{Category: "fanera", ProductType: "fk"},
		{Category: "shpon", Species: "dub"},
		{Category: "shpon", Species: "dub"},
	}
	existing := []string{"fanera-fk.webp"}

	plan := func() []string {
		r := naming.NewResolver(naming.Options{}, existing)
		finals := make([]string, len(sels))
		for i, sel := range sels {
			res, err := r.Resolve(sel, i, "webp")
			if err != nil {
				t.Fatalf("Resolve ordinal %d: %v", i, err)
			}
			finals[i] = res.Final
		}
		return finals
	}

	first := plan()
	second := plan()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("ordinal %d: pass one %q, pass two %q", i, first[i], second[i])
		}
	}
	wantFirst := []string{"shpon-dub.webp", "fanera-fk-2.webp", "shpon-dub-2.webp", "shpon-dub-3.webp"}
	for i, w := range wantFirst {
		if first[i] != w {
			t.Errorf("ordinal %d: got %q, want %q", i, first[i], w)
		}
	}
}

func TestResolveHonorsExistingNamesCaseInsensitively(t *testing.T) {
	r := naming.NewResolver(naming.Options{}, []string{"Shpon-Dub.WEBP"})
	res, err := r.Resolve(taxonomy.Selection{Category: "shpon", Species: "dub"}, 0, "webp")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Final != "shpon-dub-2.webp" {
		t.Errorf("Final = %q, want shpon-dub-2.webp", res.Final)
	}
}

func TestResolveNumberingMode(t *testing.T) {
	opts := naming.Options{
		NumberingEnabled:  true,
		NumberingTemplate: "{base}-{nn}",
		NumberingWidth:    2,
	}
	sel := taxonomy.Selection{Category: "shpon", Species: "dub"}
	r := naming.NewResolver(opts, nil)

	first, err := r.Resolve(sel, 0, "webp")
	if err != nil {
		t.Fatalf("Resolve ordinal 0: %v", err)
	}
	if first.Final != "shpon-dub-01.webp" || first.Number != 1 {
		t.Errorf("ordinal 0: got (%q, %d), want (shpon-dub-01.webp, 1)", first.Final, first.Number)
	}

	tenth, err := r.Resolve(sel, 9, "webp")
	if err != nil {
		t.Fatalf("Resolve ordinal 9: %v", err)
	}
	if tenth.Final != "shpon-dub-10.webp" || tenth.Number != 10 {
		t.Errorf("ordinal 9: got (%q, %d), want (shpon-dub-10.webp, 10)", tenth.Final, tenth.Number)
	}
}

func TestResolveNumberedNameStillChecksDisk(t *testing.T) {
	opts := naming.Options{
		NumberingEnabled:  true,
		NumberingTemplate: "{base}-{nn}",
		NumberingWidth:    2,
	}
	r := naming.NewResolver(opts, []string{"shpon-dub-01.webp"})
	res, err := r.Resolve(taxonomy.Selection{Category: "shpon", Species: "dub"}, 0, "webp")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Final != "shpon-dub-01-2.webp" || res.CollisionSuffix != 2 {
		t.Errorf("got (%q, %d), want (shpon-dub-01-2.webp, 2)", res.Final, res.CollisionSuffix)
	}
}

func TestResolveTruncatesBaseAtWordBoundary(t *testing.T) {
	tests := []struct {
		name string
		sel  taxonomy.Selection
		max  int
		want string
	}{
		{
			name: "cuts back to hyphen past seventy percent",
			sel:  taxonomy.Selection{Extra: "oak veneer premium collection"},
			max:  20,
			want: "oak-veneer-premium.webp",
		},
		{
			name: "hard cut when no late hyphen",
			sel:  taxonomy.Selection{Extra: "abcdefghijklmnopqrstuvwxyz"},
			max:  10,
			want: "abcdefghij.webp",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := naming.NewResolver(naming.Options{MaxBaseLength: tc.max}, nil)
			res, err := r.Resolve(tc.sel, 0, "webp")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Final != tc.want {
				t.Errorf("Final = %q, want %q", res.Final, tc.want)
			}
		})
	}
}

func TestResolveExhaustsCollisionSuffixes(t *testing.T) {
	sel := taxonomy.Selection{Category: "shpon", Species: "dub"}
	r := naming.NewResolver(naming.Options{MaxCollisionSuffix: 3}, nil)

	for ordinal := 0; ordinal < 3; ordinal++ {
		if _, err := r.Resolve(sel, ordinal, "webp"); err != nil {
			t.Fatalf("Resolve ordinal %d: %v", ordinal, err)
		}
	}
	_, err := r.Resolve(sel, 3, "webp")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, services.ErrNamingExhausted) {
		t.Errorf("error = %v, want ErrNamingExhausted", err)
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	orig := naming.Result{
		Base:            "shpon-dub",
		Final:           "shpon-dub-2.webp",
		Ext:             "webp",
		CollisionSuffix: 2,
	}
	payload, err := orig.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := naming.ResultFromJSON(payload)
	if err != nil {
		t.Fatalf("ResultFromJSON: %v", err)
	}
	if got != orig {
		t.Errorf("round trip = %+v, want %+v", got, orig)
	}

	empty, err := naming.ResultFromJSON("")
	if err != nil {
		t.Fatalf("ResultFromJSON empty: %v", err)
	}
	if !empty.IsZero() {
		t.Errorf("empty payload should decode to zero result, got %+v", empty)
	}
}

func TestPosterName(t *testing.T) {
	res := naming.Result{Final: "fanera-fsf.mp4", Ext: "mp4"}
	if got := res.PosterName(); got != "fanera-fsf-poster.webp" {
		t.Errorf("PosterName = %q, want fanera-fsf-poster.webp", got)
	}
	if got := (naming.Result{}).PosterName(); got != "" {
		t.Errorf("zero result PosterName = %q, want empty", got)
	}
}
