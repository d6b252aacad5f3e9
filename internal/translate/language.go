package translate

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLanguage resolves a user-supplied language tag to its English
// display name, which is what the translation prompt carries. "es" and
// "es-MX" both resolve through the tag parser; a plain English name like
// "spanish" is passed through title-cased since the parser only accepts
// BCP 47 tags.
func NormalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty target language")
	}
	if tag, err := language.Parse(value); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name, nil
		}
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' {
			return "", fmt.Errorf("unrecognized target language %q", value)
		}
	}
	return strings.ToUpper(value[:1]) + strings.ToLower(value[1:]), nil
}
