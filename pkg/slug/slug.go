package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Decompose, drop combining marks, recompose: "Café" becomes "Cafe".
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// Letters that do not decompose into a base letter plus a mark.
	special = strings.NewReplacer("ß", "ss", "ø", "o", "æ", "ae", "ı", "i", "ł", "l", "&", " and ")
)

// Generate creates a lower-case, hyphen separated slug from name.
//
//	"Devworks Bootcamp"  -> "devworks-bootcamp"
//	"ModernTech  (Boston)" -> "moderntech-boston"
//	"Codemasters & Co."  -> "codemasters-and-co"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = special.Replace(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
