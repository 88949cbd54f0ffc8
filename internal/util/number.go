package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingNumberPattern = regexp.MustCompile(`(?i)^\s*(?:art(?:igo)?\.?\s*)?(\d{1,3}(?:\.\d{3})+|\d+(?:,\d+)?)`)
	thousandsPattern     = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
)

// ParseLeadingNumber extracts the number an article label starts with.
// "5º" -> 5, "121-A" -> 121, "Art. 1.000" -> 1000. ok is false when no digits lead.
func ParseLeadingNumber(input string) (float64, bool) {
	m := leadingNumberPattern.FindStringSubmatch(input)
	if len(m) < 2 {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(normalizeNumericToken(m[1]), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if thousandsPattern.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
