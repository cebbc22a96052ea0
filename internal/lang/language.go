// Package lang parses and describes the target language of a translation.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a parsed BCP 47 language tag.
// The zero value means "not specified".
type Language struct {
	tag language.Tag
	set bool
}

// Normalize trims a language code and uses '-' as the separator.
// Accepts: "pt-BR", "pt_BR", " pt-br " -> "pt-BR" after Parse.
func Normalize(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
}

// Parse parses a language code such as "fr", "pt-BR" or "zh_Hans".
// An empty code returns the zero Language without error.
// Codes that are ill-formed or name no known language return ErrInvalid.
func Parse(code string) (Language, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return Language{}, nil
	}

	tag, err := language.Parse(normalized)
	if err != nil {
		return Language{}, fmt.Errorf("invalid language code %q (use codes like 'en', 'fr', 'pt-BR'): %w",
			code, ErrInvalid)
	}
	if base, _ := tag.Base(); base.String() == "und" {
		return Language{}, fmt.Errorf("undetermined language %q: %w", code, ErrInvalid)
	}

	return Language{tag: tag, set: true}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(code string) Language {
	l, err := Parse(code)
	if err != nil {
		panic(err)
	}
	return l
}

// IsZero reports whether the language is unset.
func (l Language) IsZero() bool {
	return !l.set
}

// String returns the canonical tag ("pt-BR"), or "" when unset.
func (l Language) String() string {
	if !l.set {
		return ""
	}
	return l.tag.String()
}

// Tag returns the underlying x/text tag.
func (l Language) Tag() language.Tag {
	return l.tag
}

// BaseCode returns the ISO 639 base language ("pt-BR" -> "pt").
// Transcription APIs only accept base codes.
func (l Language) BaseCode() string {
	if !l.set {
		return ""
	}
	base, _ := l.tag.Base()
	return base.String()
}

// DisplayName returns the English name of the language, e.g. "French" or
// "Brazilian Portuguese". Falls back to the base language name, then the tag.
func (l Language) DisplayName() string {
	if !l.set {
		return ""
	}
	if name := display.English.Tags().Name(l.tag); name != "" {
		return name
	}
	base, _ := l.tag.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return l.tag.String()
}

// Equal reports whether both languages carry the same tag.
func (l Language) Equal(other Language) bool {
	return l.set == other.set && l.tag.String() == other.tag.String()
}

// MarshalText implements encoding.TextMarshaler.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
