package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a name has no characters that survive slugification.
const Fallback = "master"

// letters that do not decompose into a latin base plus a combining mark
var transliteration = strings.NewReplacer(
	"ə", "e", "Ə", "e",
	"ı", "i", "İ", "i",
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a display name into a lowercase ASCII slug.
func Make(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, transliteration.Replace(name))
	if err != nil {
		ascii = name
	}

	s := nonAlphanumeric.ReplaceAllString(strings.ToLower(ascii), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// Unique returns base, or base-1, base-2 and so on, whichever exists reports as free first.
func Unique(base string, exists func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
