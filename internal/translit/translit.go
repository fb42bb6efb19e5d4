package translit

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// table maps Cyrillic runes to Latin replacements. Ukrainian letters follow
// the national romanization; Ы, Э, Ё, and Ъ are Russian compatibility
// entries so mixed-language product names resolve to one spelling
// ("Берёза" and "Береза" both become "bereza").
var table = map[rune]string{
	'А': "A", 'а': "a",
	'Б': "B", 'б': "b",
	'В': "V", 'в': "v",
	'Г': "H", 'г': "h",
	'Ґ': "G", 'ґ': "g",
	'Д': "D", 'д': "d",
	'Е': "E", 'е': "e",
	'Є': "Ye", 'є': "ye",
	'Ж': "Zh", 'ж': "zh",
	'З': "Z", 'з': "z",
	'И': "Y", 'и': "y",
	'І': "I", 'і': "i",
	'Ї': "Yi", 'ї': "yi",
	'Й': "Y", 'й': "y",
	'К': "K", 'к': "k",
	'Л': "L", 'л': "l",
	'М': "M", 'м': "m",
	'Н': "N", 'н': "n",
	'О': "O", 'о': "o",
	'П': "P", 'п': "p",
	'Р': "R", 'р': "r",
	'С': "S", 'с': "s",
	'Т': "T", 'т': "t",
	'У': "U", 'у': "u",
	'Ф': "F", 'ф': "f",
	'Х': "Kh", 'х': "kh",
	'Ц': "Ts", 'ц': "ts",
	'Ч': "Ch", 'ч': "ch",
	'Ш': "Sh", 'ш': "sh",
	'Щ': "Shch", 'щ': "shch",
	'Ь': "", 'ь': "",
	'Ю': "Yu", 'ю': "yu",
	'Я': "Ya", 'я': "ya",
	'Ы': "Y", 'ы': "y",
	'Э': "E", 'э': "e",
	'Ё': "E", 'ё': "e",
	'Ъ': "", 'ъ': "",
}

// apostrophes are removed entirely; the Ukrainian apostrophe acts like a
// soft sign for slug purposes ("мʼякий" -> "myakyy").
var apostrophes = map[rune]bool{
	'\'': true,
	'ʼ':  true, // modifier letter apostrophe
	'’':  true, // right single quotation mark
}

// Transliterate converts Cyrillic text to its Latin form. ASCII runes pass
// through unchanged, apostrophes and soft/hard signs are dropped, and any
// other rune without a table entry is dropped as well.
func Transliterate(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if apostrophes[r] {
			continue
		}
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}
		if repl, ok := table[r]; ok {
			b.WriteString(repl)
		}
	}
	return b.String()
}

// Slugify produces a lowercase hyphen-separated slug from arbitrary product
// text: transliterate, lowercase, turn whitespace and underscores into
// hyphens, keep only [a-z0-9-.], collapse hyphen runs, and trim edge
// hyphens and dots. Returns "" when nothing survives.
func Slugify(s string) string {
	s = strings.ToLower(Transliterate(s))
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '_' || r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.':
			b.WriteRune(r)
			prevHyphen = false
		}
	}
	return strings.Trim(b.String(), "-.")
}

var (
	slugPartRE = regexp.MustCompile(`^[a-z0-9]+$`)
	sizePartRE = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?mm$`)
)

// ValidateSlug reports whether slug satisfies the filename grammar:
// hyphen-separated components of [a-z0-9]+, where a component may instead
// be a metric size token like "18mm" or "0.6mm". That size token is the
// only place a literal dot may appear.
func ValidateSlug(slug string) bool {
	if slug == "" {
		return false
	}
	for _, part := range strings.Split(slug, "-") {
		if part == "" {
			return false
		}
		if !slugPartRE.MatchString(part) && !sizePartRE.MatchString(part) {
			return false
		}
	}
	return true
}

// IsSizeToken reports whether the token is a metric size such as "18mm"
// or "0.6mm".
func IsSizeToken(token string) bool {
	return sizePartRE.MatchString(token)
}
