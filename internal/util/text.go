package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces  = regexp.MustCompile(`\s+`)
	reHTMLTag = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	reBreaks  = regexp.MustCompile(`(?i)<(?:br|/p|/div|/li|/tr|/td)[^>]*>`)
)

// FoldText lowercases s, drops combining marks and collapses whitespace.
// "Código  Civil" and "codigo civil" fold to the same string.
func FoldText(input string) string {
	if input == "" {
		return ""
	}
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripAccents, input)
	if err != nil {
		s = input
	}
	return NormalizeSpaces(strings.ToLower(s))
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// StripHTML returns the visible text of an HTML fragment. Plain text passes through
// with only whitespace collapsed.
func StripHTML(input string) string {
	if !reHTMLTag.MatchString(input) {
		return NormalizeSpaces(input)
	}
	spaced := reBreaks.ReplaceAllString(input, " $0")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaced))
	if err != nil {
		return NormalizeSpaces(reHTMLTag.ReplaceAllString(input, " "))
	}
	return NormalizeSpaces(doc.Text())
}

// ContainsFolded reports whether needle occurs in haystack ignoring case and accents.
// An empty needle matches everything.
func ContainsFolded(haystack, needle string) bool {
	n := FoldText(needle)
	if n == "" {
		return true
	}
	return strings.Contains(FoldText(haystack), n)
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
