package converter

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// detectLanguage guesses the language of an untagged code block with
// chroma's analysers and returns its primary alias in lower case, or "" when
// nothing matches.
func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	config := lexer.Config()
	if config == nil {
		return ""
	}
	if len(config.Aliases) > 0 {
		return strings.ToLower(config.Aliases[0])
	}
	return strings.ToLower(config.Name)
}
