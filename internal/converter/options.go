package converter

import "strings"

// Options controls a single conversion. It is a value type; callers build one
// per call and the converter never mutates it.
type Options struct {
	// Theme is appended to every code macro as theme=<Theme>. Empty means no
	// theme parameter.
	Theme string
	// DetectLanguage guesses a language for code blocks that have no tag.
	DetectLanguage bool
	// StripFrontMatter removes a leading YAML/TOML front matter block before
	// parsing.
	StripFrontMatter bool
}

// DefaultOptions returns options with no theme and no extras.
func DefaultOptions() Options {
	return Options{}
}

// WithTheme returns a copy of o using theme. A blank theme clears it.
func (o Options) WithTheme(theme string) Options {
	if strings.TrimSpace(theme) == "" {
		o.Theme = ""
		return o
	}
	o.Theme = theme
	return o
}

func (o Options) hasTheme() bool {
	return o.Theme != ""
}
