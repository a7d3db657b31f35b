// Package message provides named-parameter templating and explicit pluralization
// for user-facing text.
package message

import (
	"fmt"
	"regexp"
)

// Params holds the named values substituted into a message template.
type Params map[string]any

// paramPattern matches placeholders in the form %{name}.
var paramPattern = regexp.MustCompile(`%\{([^}]+)\}`)

// Format substitutes every %{name} placeholder in tmpl with the matching value
// from params. Placeholders without a value are kept as-is.
func Format(tmpl string, params Params) string {
	if len(params) == 0 {
		return tmpl
	}

	return paramPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := params[name]; ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Pluralize selects the singular template when count is exactly 1 and the plural
// template otherwise, then formats it with params.
func Pluralize(count int, singular, plural string, params Params) string {
	tmpl := plural
	if count == 1 {
		tmpl = singular
	}
	return Format(tmpl, params)
}
