// Package slug turns display names into URL-safe identifiers. Menu and
// category names are commonly entered in Macedonian Cyrillic, so a fixed
// transliteration table maps those to Latin before normalization.
package slug

import (
	"regexp"
	"strings"
)

// translit maps Cyrillic letters (plus common Latin diacritics) to their
// Latin form. Unmapped characters pass through unchanged.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'ѓ': "gj", 'е': "e", 'ж': "zh", 'з': "z", 'ѕ': "dz",
	'и': "i", 'ј': "j", 'к': "k", 'л': "l", 'љ': "lj",
	'м': "m", 'н': "n", 'њ': "nj", 'о': "o", 'п': "p",
	'р': "r", 'с': "s", 'т': "t", 'ќ': "kj", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'џ': "dzh",
	'ш': "sh",
	// Russian/Serbian letters that show up in practice
	'ё': "e", 'й': "j", 'щ': "sht", 'ъ': "", 'ы': "y",
	'ь': "", 'э': "e", 'ю': "ju", 'я': "ja", 'ђ': "dj", 'ћ': "c",
	// Latin diacritics
	'á': "a", 'à': "a", 'â': "a", 'ä': "a", 'å': "a", 'ã': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'ö': "o", 'õ': "o",
	'ú': "u", 'ù': "u", 'û': "u", 'ü': "u",
	'ñ': "n", 'ç': "c", 'ß': "ss",
}

var (
	nonWord    = regexp.MustCompile(`[^\w\- ]+`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphenRun  = regexp.MustCompile(`-{2,}`)
)

// Transliterate replaces every mapped character with its Latin
// substitution, leaving the rest of the string untouched.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := translit[r]; ok {
			b.WriteString(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Make derives a URL-safe slug from a display name. It is deterministic
// and idempotent: feeding a slug back in returns it unchanged.
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = Transliterate(s)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
