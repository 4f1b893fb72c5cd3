// Package language resolves the effective content language for a request.
// Precedence: explicit x-language header, then the learner's stored
// preference, then the default. The resolved code keys the quiz content
// cache; the display name is handed to the content generator so prompts name
// the language the learner will actually read.
package language

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a supported content language.
type Language struct {
	Code string // BCP 47 base code, e.g. "ta"
	Name string // English display name, e.g. "Tamil"
}

// Resolver picks the effective language from a supported set.
type Resolver struct {
	supported   map[string]Language
	defaultCode string
}

// NewResolver creates a resolver over the platform's supported languages.
// defaultCode must be in the supported set; it falls back to English.
func NewResolver(defaultCode string) *Resolver {
	tags := []language.Tag{
		language.English,
		language.Tamil,
		language.Telugu,
		language.Malayalam,
		language.Hindi,
		language.Kannada,
	}

	supported := make(map[string]Language, len(tags))
	namer := display.English.Languages()
	for _, tag := range tags {
		base, _ := tag.Base()
		code := base.String()
		supported[code] = Language{Code: code, Name: namer.Name(tag)}
	}

	if _, ok := supported[defaultCode]; !ok {
		defaultCode = "en"
	}
	return &Resolver{supported: supported, defaultCode: defaultCode}
}

// Resolve picks the effective language. header comes from the x-language
// request header; stored is the learner's saved preference. Unsupported or
// malformed codes are skipped, never errors.
func (r *Resolver) Resolve(header, stored string) Language {
	if lang, ok := r.lookup(header); ok {
		return lang
	}
	if lang, ok := r.lookup(stored); ok {
		return lang
	}
	return r.supported[r.defaultCode]
}

// Supported reports whether the code resolves to a supported language.
func (r *Resolver) Supported(code string) bool {
	_, ok := r.lookup(code)
	return ok
}

// lookup normalizes a raw code ("ta", "ta-IN", "TA") to a supported language.
func (r *Resolver) lookup(code string) (Language, bool) {
	if code == "" {
		return Language{}, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, false
	}
	base, _ := tag.Base()
	lang, ok := r.supported[base.String()]
	return lang, ok
}
