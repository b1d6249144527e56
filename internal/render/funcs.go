package render

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

// defaultFuncMap returns the template helper functions available to every
// path expression and content template.
func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase, // user_name → UserName
		"camelCase":  CamelCase,  // user_name → userName
		"snakeCase":  SnakeCase,  // UserName → user_name
		"kebabCase":  KebabCase,  // UserName → user-name

		// String manipulation
		"quote":     Quote, // test → "test"
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     Title, // Custom title case function
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"split":     strings.Split,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,

		// Utilities
		"dict":    Dict,    // Create map for passing multiple values
		"default": Default, // Provide default value if nil/empty
	}
}

// PascalCase converts snake_case or camelCase to PascalCase
// Examples: user_name → UserName, userName → UserName
func PascalCase(s string) string {
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "_-") {
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
		for i, part := range parts {
			parts[i] = capitalizeWord(part)
		}
		return strings.Join(parts, "")
	}

	if unicode.IsLower(rune(s[0])) {
		return capitalizeWord(s)
	}
	return s
}

// capitalizeWord capitalizes a word, keeping the rest as-is
func capitalizeWord(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// CamelCase converts snake_case or PascalCase to camelCase
// Examples: user_name → userName, UserName → userName
func CamelCase(s string) string {
	pascal := PascalCase(s)
	if pascal == "" {
		return ""
	}
	return strings.ToLower(string(pascal[0])) + pascal[1:]
}

// SnakeCase converts PascalCase or camelCase to snake_case
// Examples: UserName → user_name, HTTPServer → http_server
func SnakeCase(s string) string {
	return delimitedCase(s, '_')
}

// KebabCase converts PascalCase or camelCase to kebab-case
// Examples: UserName → user-name, my_project → my-project
func KebabCase(s string) string {
	return delimitedCase(s, '-')
}

func delimitedCase(s string, delim rune) string {
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "_-") {
		lower := strings.ToLower(s)
		lower = strings.ReplaceAll(lower, "_", string(delim))
		return strings.ReplaceAll(lower, "-", string(delim))
	}

	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			// Break before an uppercase rune when the previous rune is
			// lowercase, or when an acronym run ends (next rune lowercase).
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteRune(delim)
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteRune(delim)
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Quote wraps a string in double quotes
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Title converts a string to title case (first letter of each word capitalized)
// This replaces the deprecated strings.Title
func Title(s string) string {
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// Dict creates a map from alternating key-value pairs
// Usage in template: {{ template "partial" (dict "key1" val1 "key2" val2) }}
func Dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}

	result := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T at position %d", values[i], i)
		}
		result[key] = values[i+1]
	}
	return result, nil
}

// Default returns the default value if the given value is nil or empty
func Default(defaultVal, val any) any {
	if val == nil {
		return defaultVal
	}

	if s, ok := val.(string); ok && s == "" {
		return defaultVal
	}

	switch v := val.(type) {
	case []any:
		if len(v) == 0 {
			return defaultVal
		}
	case map[string]any:
		if len(v) == 0 {
			return defaultVal
		}
	}

	// Numeric zero is a valid value; only nil, empty string, and empty
	// collections count as "empty".
	return val
}
