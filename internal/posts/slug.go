package posts

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var symbolWords = map[rune]string{'+': "plus", '#': "sharp"}

// Slug is the default tag name encoder. It strips diacritics, lower-cases,
// and joins runs of letters and digits with single dashes:
// "Crème Brûlée & Go" becomes "creme-brulee-go". "+" and "#" are spelled
// out so "C++" and "C#" do not collapse into "c".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if word, ok := symbolWords[r]; ok {
			if b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteString(word)
			pendingDash = true
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
