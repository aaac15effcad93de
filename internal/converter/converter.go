package converter

import (
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"

	"md2confluence/internal/logger"
	"md2confluence/internal/parser"
)

// Converter turns Markdown into Confluence wiki markup. It holds no
// per-conversion state and is safe for concurrent use.
type Converter struct {
	parser *parser.MarkdownParser
	log    *logger.Logger
}

// NewConverter creates a converter. A nil logger discards output.
func NewConverter(log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{
		parser: parser.NewMarkdownParser(),
		log:    log,
	}
}

// Convert converts markdown to wiki markup. Blank input yields an empty
// string without touching the parser.
func (c *Converter) Convert(markdown string, opts Options) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	source := []byte(markdown)
	if opts.StripFrontMatter {
		source = c.stripFrontMatter(source)
		if strings.TrimSpace(string(source)) == "" {
			return "", nil
		}
	}

	root, err := c.parser.Parse(source)
	if err != nil {
		return "", errors.Wrap(err, "convert")
	}

	r := newRenderer(source, opts, c.log)
	r.walkNode(root, scope{})
	return postProcess(r.out.String(), r.marks), nil
}

func (c *Converter) stripFrontMatter(source []byte) []byte {
	var meta map[string]interface{}
	body, err := frontmatter.Parse(strings.NewReader(string(source)), &meta)
	if err != nil {
		c.log.Debug("front matter ignored", "error", err)
		return source
	}
	return body
}
