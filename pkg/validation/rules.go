package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-resumeform/pkg/model"
)

var (
	tagValidator = validator.New()
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
)

const (
	defaultYearMin = 1900
	defaultYearMax = 2100
)

// applyRule runs a named rule against a non-empty value. Params["message"]
// replaces the default message.
func applyRule(field model.Field, rule model.ValidationRule, value string) (string, bool) {
	msg, ok := evaluate(field, rule, value)
	if ok {
		return "", true
	}
	if custom := strings.TrimSpace(rule.Params["message"]); custom != "" {
		return custom, false
	}
	return msg, false
}

func evaluate(field model.Field, rule model.ValidationRule, value string) (string, bool) {
	label := field.DisplayLabel()

	switch rule.Kind {
	case model.ValidationRuleEmail:
		if tagValidator.Var(value, "email") != nil {
			return "Please enter a valid email address", false
		}
	case model.ValidationRuleURL:
		if tagValidator.Var(value, "url") != nil {
			return "Please enter a valid URL", false
		}
	case model.ValidationRulePhone:
		if !phonePattern.MatchString(value) || countDigits(value) < 7 {
			return "Please enter a valid phone number", false
		}
	case model.ValidationRulePattern:
		expr, err := regexp.Compile(rule.Params["pattern"])
		if err != nil || !expr.MatchString(value) {
			return fmt.Sprintf("%s has an invalid format", label), false
		}
	case model.ValidationRuleRange:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Sprintf("%s must be a number", label), false
		}
		lo, hasLo := floatParam(rule, "min")
		hi, hasHi := floatParam(rule, "max")
		if (hasLo && n < lo) || (hasHi && n > hi) {
			return rangeMessage(label, rule, hasLo, hasHi), false
		}
	case model.ValidationRuleYear:
		if !yearPattern.MatchString(value) {
			return "Please enter a valid year", false
		}
		year, _ := strconv.Atoi(value)
		lo, hi := defaultYearMin, defaultYearMax
		if v, ok := floatParam(rule, "min"); ok {
			lo = int(v)
		}
		if v, ok := floatParam(rule, "max"); ok {
			hi = int(v)
		}
		if year < lo || year > hi {
			return fmt.Sprintf("Year must be between %d and %d", lo, hi), false
		}
	case model.ValidationRuleMinLength:
		if n, ok := intParam(rule, "value"); ok && utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("%s must be at least %d characters", label, n), false
		}
	case model.ValidationRuleMaxLength:
		if n, ok := intParam(rule, "value"); ok && utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("%s must be at most %d characters", label, n), false
		}
	}
	return "", true
}

func rangeMessage(label string, rule model.ValidationRule, hasLo, hasHi bool) string {
	switch {
	case hasLo && hasHi:
		return fmt.Sprintf("%s must be between %s and %s", label, rule.Params["min"], rule.Params["max"])
	case hasLo:
		return fmt.Sprintf("%s must be at least %s", label, rule.Params["min"])
	default:
		return fmt.Sprintf("%s must be at most %s", label, rule.Params["max"])
	}
}

func floatParam(rule model.ValidationRule, key string) (float64, bool) {
	raw, ok := rule.Params[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func intParam(rule model.ValidationRule, key string) (int, bool) {
	raw, ok := rule.Params[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func countDigits(value string) int {
	n := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
