package converter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"md2confluence/internal/logger"
)

// renderer walks one document tree. A renderer lives for exactly one
// conversion call.
type renderer struct {
	source []byte
	opts   Options
	marks  sentinels
	log    *logger.Logger
	out    *strings.Builder
}

// scope is the render context threaded down the tree. It is passed by value,
// so whatever a handler sets only applies to its own subtree.
type scope struct {
	header  bool       // inside a table header row
	lists   []listKind // enclosing lists, outermost first
	inItem  bool       // direct child of a list item
	leading bool       // first child of a list item
}

func newRenderer(source []byte, opts Options, log *logger.Logger) *renderer {
	return &renderer{
		source: source,
		opts:   opts,
		marks:  newSentinels(),
		log:    log,
		out:    &strings.Builder{},
	}
}

func (r *renderer) write(s string) {
	r.out.WriteString(s)
}

// capture renders fn into a separate buffer and returns what it wrote.
func (r *renderer) capture(fn func()) string {
	saved := r.out
	r.out = &strings.Builder{}
	fn()
	text := r.out.String()
	r.out = saved
	return text
}

// walkNode renders the children of n.
func (r *renderer) walkNode(n ast.Node, s scope) {
	s.inItem, s.leading = false, false
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		r.processNode(child, s)
	}
}

// processNode dispatches on the node kind. Kinds without a handler render
// their children only.
func (r *renderer) processNode(n ast.Node, s scope) {
	switch node := n.(type) {
	case *ast.Document:
		r.walkNode(node, s)

	// blocks
	case *ast.Heading:
		r.processHeading(node, s)
	case *ast.Paragraph:
		r.processParagraph(node, s)
	case *ast.TextBlock:
		r.processParagraph(node, s)
	case *ast.Blockquote:
		r.processBlockquote(node, s)
	case *ast.FencedCodeBlock:
		r.processFencedCodeBlock(node)
	case *ast.CodeBlock:
		r.processCodeBlock(node)
	case *ast.ThematicBreak:
		r.write("----\n\n")
	case *ast.HTMLBlock:
		r.processHTMLBlock(node)

	// lists
	case *ast.List:
		r.processList(node, s)
	case *ast.ListItem:
		r.processListItem(node, s)
	case *east.TaskCheckBox:
		// The marker is written by the list item.

	// tables
	case *east.Table:
		r.walkNode(node, s)
		r.write("\n")
	case *east.TableHeader:
		s.header = true
		r.processTableRow(node, s)
	case *east.TableRow:
		s.header = false
		r.processTableRow(node, s)
	case *east.TableCell:
		r.processTableCell(node, s)

	// inlines
	case *ast.Emphasis:
		r.processEmphasis(node, s)
	case *east.Strikethrough:
		r.wrap("-", node, s)
	case *ast.CodeSpan:
		r.processCodeSpan(node)
	case *ast.Link:
		r.processLink(node, s)
	case *ast.AutoLink:
		r.processAutoLink(node)
	case *ast.Image:
		r.processImage(node)
	case *ast.Text:
		r.processText(node)
	case *ast.String:
		r.write(escapeText(string(node.Value)))
	case *ast.RawHTML:
		r.processRawHTML(node)

	default:
		r.log.UnsupportedNode(n.Kind().String())
		r.walkNode(n, s)
	}
}

func (r *renderer) processHeading(node *ast.Heading, s scope) {
	r.write(fmt.Sprintf("h%d. ", node.Level))
	r.walkNode(node, s)
	r.write("\n\n")
}

// processParagraph handles paragraphs and goldmark's tight-list text blocks.
// Inside a list item the text stays on the item's line.
func (r *renderer) processParagraph(node ast.Node, s scope) {
	if s.inItem {
		r.walkNode(node, s)
		return
	}
	r.walkNode(node, s)
	r.write("\n\n")
}

func (r *renderer) processBlockquote(node *ast.Blockquote, s scope) {
	r.write("{quote}\n")
	r.walkNode(node, s)
	r.write("{quote}\n\n")
}

func (r *renderer) processFencedCodeBlock(node *ast.FencedCodeBlock) {
	lang := strings.ToLower(string(node.Language(r.source)))
	code := r.codeLines(node)
	if lang == "" && r.opts.DetectLanguage {
		lang = detectLanguage(code)
	}

	var params []string
	switch lang {
	case "":
	case "mermaid":
		params = append(params, "language=text", "title=mermaid", "collapse=true")
	default:
		params = append(params, "language="+lang)
	}
	r.writeCodeMacro(params, code)
}

func (r *renderer) processCodeBlock(node *ast.CodeBlock) {
	code := r.codeLines(node)

	var params []string
	if r.opts.DetectLanguage {
		if lang := detectLanguage(code); lang != "" {
			params = append(params, "language="+lang)
		}
	}
	r.writeCodeMacro(params, code)
}

// codeLines joins the raw lines of a code block and drops one trailing
// newline.
func (r *renderer) codeLines(node ast.Node) string {
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(r.source))
	}
	return strings.TrimSuffix(code.String(), "\n")
}

func (r *renderer) writeCodeMacro(params []string, code string) {
	if r.opts.hasTheme() {
		params = append(params, "theme="+r.opts.Theme)
	}
	open := "{code}"
	if len(params) > 0 {
		open = "{code:" + strings.Join(params, "|") + "}"
	}
	r.write(open + "\n" + code + "\n{code}\n\n")
}

func (r *renderer) processHTMLBlock(node *ast.HTMLBlock) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.out.Write(line.Value(r.source))
	}
	if node.HasClosure() {
		r.out.Write(node.ClosureLine.Value(r.source))
	}
	r.write("\n")
}

func (r *renderer) processList(node *ast.List, s scope) {
	nested := s.inItem
	s.lists = pushList(s.lists, kindOf(node), nested)
	s.inItem, s.leading = false, false
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		r.processNode(child, s)
	}
	if !nested {
		r.write("\n")
	}
}

func (r *renderer) processListItem(node *ast.ListItem, s scope) {
	fallback := bulletList
	if list, ok := node.Parent().(*ast.List); ok && !isTask(node) {
		fallback = kindOf(list)
	}

	r.write(listPrefix(s.lists, fallback) + " ")
	if box := taskCheckBox(node); box != nil {
		if box.IsChecked {
			r.write("(/) ")
		} else {
			r.write("(x) ")
		}
	}

	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		_, sublist := child.(*ast.List)
		if sublist || child.PreviousSibling() != nil {
			// Nested lists and follow-up blocks start on their own line.
			r.write("\n")
		}
		cs := s
		cs.inItem = true
		cs.leading = child.PreviousSibling() == nil
		r.processNode(child, cs)
	}

	// A trailing nested list already ended its last line.
	if _, sublist := node.LastChild().(*ast.List); !sublist {
		r.write("\n")
	}
}

// taskCheckBox returns the check box that opens a task list item, if any.
func taskCheckBox(item *ast.ListItem) *east.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*east.TaskCheckBox)
	return box
}

func isTask(item *ast.ListItem) bool {
	return taskCheckBox(item) != nil
}

func (r *renderer) processTableRow(node ast.Node, s scope) {
	if s.header {
		r.write("|| ")
	} else {
		r.write("| ")
	}
	r.walkNode(node, s)
	r.write("\n")
}

func (r *renderer) processTableCell(node *east.TableCell, s scope) {
	r.walkNode(node, s)
	last := node.NextSibling() == nil
	switch {
	case s.header && last:
		r.write(" ||")
	case s.header:
		r.write(" || ")
	case last:
		r.write(" |")
	default:
		r.write(" | ")
	}
}

func (r *renderer) processEmphasis(node *ast.Emphasis, s scope) {
	if node.Level >= 2 {
		r.wrap("*", node, s)
		return
	}
	r.wrap("_", node, s)
}

func (r *renderer) wrap(marker string, node ast.Node, s scope) {
	r.write(marker)
	r.walkNode(node, s)
	r.write(marker)
}

func (r *renderer) processCodeSpan(node *ast.CodeSpan) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			code.Write(t.Segment.Value(r.source))
		case *ast.String:
			code.Write(t.Value)
		}
	}
	content := strings.ReplaceAll(code.String(), "\n", " ")
	r.write(r.marks.codeStart + escapeCode(content) + r.marks.codeEnd)
}

func (r *renderer) processLink(node *ast.Link, s scope) {
	url := string(node.Destination)
	text := r.capture(func() { r.walkNode(node, s) })
	if text != "" && text != url {
		r.write("[" + text + "|" + url + "]")
		return
	}
	r.write("[" + url + "]")
}

func (r *renderer) processAutoLink(node *ast.AutoLink) {
	label := string(node.Label(r.source))
	if node.AutoLinkType == ast.AutoLinkEmail {
		r.write("[mailto:" + label + "]")
		return
	}
	r.write("[" + label + "]")
}

func (r *renderer) processImage(node *ast.Image) {
	url := string(node.Destination)
	alt := r.plainText(node)
	if alt != "" {
		r.write("!" + url + "|alt=" + alt + "!")
		return
	}
	r.write("!" + url + "!")
}

// plainText collects the literal text under n without any markup.
func (r *renderer) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(util.UnescapePunctuations(t.Segment.Value(r.source)))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (r *renderer) processText(node *ast.Text) {
	value := node.Segment.Value(r.source)
	if !node.IsRaw() {
		value = util.UnescapePunctuations(value)
	}
	r.write(escapeText(string(value)))
	if node.SoftLineBreak() || node.HardLineBreak() {
		r.write("\n")
	}
}

func (r *renderer) processRawHTML(node *ast.RawHTML) {
	for i := 0; i < node.Segments.Len(); i++ {
		segment := node.Segments.At(i)
		r.out.Write(segment.Value(r.source))
	}
}

var (
	textEscaper = strings.NewReplacer("{", `\{`, "}", `\}`)
	codeEscaper = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)
)

// escapeText escapes the macro braces in plain text.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// escapeCode escapes backslashes and braces inside inline code.
func escapeCode(s string) string {
	return codeEscaper.Replace(s)
}
