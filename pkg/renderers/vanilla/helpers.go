package vanilla

import (
	"strings"
	"unicode"
)

// controlID derives a DOM id from a runtime id. Dots and escape markers are
// not valid in CSS selectors without quoting, so they become dashes.
func controlID(runtimeID string) string {
	trimmed := strings.TrimSpace(runtimeID)
	if trimmed == "" {
		return ""
	}
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, trimmed)
	return "rf-" + mapped
}

func errorID(runtimeID string) string {
	id := controlID(runtimeID)
	if id == "" {
		return ""
	}
	return id + "-error"
}

// sanitizeClassList drops the reserved rf- prefix from caller supplied
// classes so overrides cannot impersonate chrome classes.
func sanitizeClassList(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "rf-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}
