package parser

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// ErrParse is returned when the goldmark parser fails on the given source.
var ErrParse = errors.New("markdown parse failed")

// MarkdownParser wraps a goldmark parser configured for the constructs the
// converter understands.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdownParser creates a parser with table, strikethrough and task list
// support. Bare URLs are left as text; only <...> autolinks become links.
func NewMarkdownParser() *MarkdownParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
	)
	return &MarkdownParser{md: md}
}

// Parse parses Markdown source into a goldmark document tree.
func (p *MarkdownParser) Parse(content []byte) (root ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = errors.Wrap(ErrParse, fmt.Sprint(r))
		}
	}()

	reader := text.NewReader(content)
	return p.md.Parser().Parse(reader), nil
}
