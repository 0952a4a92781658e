package render

import (
	"strings"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

// ErrorMapping splits a server error payload into field-level messages keyed
// by runtime id and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (JSON pointers, dotted or
// bracketed paths, optionally wrapped in body/data prefixes) into the runtime
// ids used by the error map. Paths keep their item indices, so
// "/body/education/1/degree" maps to "education.1.degree". Unknown paths are
// treated as form-level errors so messages are not lost.
func MapErrorPayload(form model.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	for rawPath, messages := range payload {
		normalizedMessages := normalizeMessages(messages)
		if len(normalizedMessages) == 0 {
			continue
		}

		mapped, formLevel := mapErrorPath(form, rawPath)
		if formLevel || mapped == "" {
			mapping.Form = append(mapping.Form, normalizedMessages...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], normalizedMessages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// Merge folds the field messages into errs without overriding messages the
// local validator already produced. Multiple messages are joined with "; ".
func (m ErrorMapping) Merge(errs validation.ErrorMap) validation.ErrorMap {
	out := make(validation.ErrorMap, len(errs)+len(m.Fields))
	for id, msg := range errs {
		out[id] = msg
	}
	for id, messages := range m.Fields {
		if _, exists := out[id]; exists {
			continue
		}
		out[id] = strings.Join(messages, "; ")
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(form model.Form, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := model.Path{}
	bestLen := 0
	for _, variant := range buildSegmentVariants(segments) {
		path, n := longestMatchingPath(form, variant)
		if n > bestLen {
			best, bestLen = path, n
		}
	}

	if bestLen > 0 {
		return best.String(), false
	}

	return "", true
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	variants := [][]string{segments}
	if noWrappers := dropWrapperSegments(segments); len(noWrappers) > 0 && len(noWrappers) != len(segments) {
		variants = append(variants, noWrappers)
	}
	return variants
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

// longestMatchingPath resolves the longest prefix of segments that names a
// declared field or item sub-field, reporting how many segments it consumed.
func longestMatchingPath(form model.Form, segments []string) (model.Path, int) {
	for end := len(segments); end > 0; end-- {
		escaped := make([]string, end)
		for i, segment := range segments[:end] {
			escaped[i] = keyEscaper.Replace(segment)
		}
		if path, ok := form.ResolvePath(strings.Join(escaped, ".")); ok {
			return path, end
		}
	}
	return model.Path{}, 0
}

var keyEscaper = strings.NewReplacer("~", "~0", ".", "~1")

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
