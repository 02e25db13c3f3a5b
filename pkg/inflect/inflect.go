// Package inflect provides the deterministic string transforms used to derive
// REST endpoint segments and generated identifiers from entity names: case
// conversions and a heuristic singular/plural pair.
//
// The singular/plural transforms are deliberately rule based rather than
// dictionary based. Endpoint derivation on every consumer of an API must map
// an entity name to the exact same path segment, so the documented rules are
// kept as-is, including their known gaps for irregular English nouns.
package inflect

import (
	"strings"
	"unicode"
)

// splitName splits a string on underscores, hyphens and whitespace.
func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
}

func capitalize(part string) string {
	runes := []rune(part)
	var b strings.Builder
	b.WriteRune(unicode.ToUpper(runes[0]))
	for _, r := range runes[1:] {
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ToPascalCase transforms a snake_case, kebab-case or space separated string
// into PascalCase.
func ToPascalCase(name string) string {
	var b strings.Builder
	for _, part := range splitName(name) {
		b.WriteString(capitalize(part))
	}
	return b.String()
}

// ToCamelCase transforms a snake_case, kebab-case or space separated string
// into camelCase.
func ToCamelCase(name string) string {
	parts := splitName(name)
	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, part := range parts[1:] {
		b.WriteString(capitalize(part))
	}
	return b.String()
}

// ToSnakeCase transforms a kebab-case or space separated string into
// snake_case. Applying it to its own output changes nothing.
func ToSnakeCase(name string) string {
	parts := splitName(name)
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "_")
}

// suffixes whose stems take a plain "es" plural
var esStems = []string{"ch", "sh", "ss", "x", "z", "o"}

func stemTakesES(stem string) bool {
	for _, s := range esStems {
		if strings.HasSuffix(stem, s) {
			return true
		}
	}
	return false
}

// ToSingular reduces a plural word to its singular form. Irregular nouns
// (mouse, child, ...) are out of scope for the rule set and pass through
// whatever the closest rule produces.
func ToSingular(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "es") && len(word) > 2 && stemTakesES(word[:len(word)-2]):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "es"):
		return word[:len(word)-1]
	case strings.HasSuffix(word, "s") && len(word) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// ToPlural expands a singular word to its plural form. Words that already end
// in "s" are returned unchanged, which makes the function idempotent and lets
// callers pass either form of an entity name.
func ToPlural(word string) string {
	if word == "" {
		return word
	}

	if strings.HasSuffix(word, "s") {
		return word
	}

	if last := word[len(word)-1]; last == 'y' && len(word) > 1 && !isVowel(word[len(word)-2]) {
		return word[:len(word)-1] + "ies"
	}

	for _, s := range []string{"ch", "sh", "x", "z", "o"} {
		if strings.HasSuffix(word, s) {
			return word + "es"
		}
	}

	return word + "s"
}
