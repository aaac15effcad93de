package converter

import (
	"regexp"
	"strings"
)

var (
	codeMacroPattern    = regexp.MustCompile(`\{code(?::[^}]*)?\}[\s\S]*?\{code\}`)
	// Opening and closing markers must hug non-space text, as in Markdown,
	// so runs of nested list markers like "***** item" are left alone.
	residualBoldPattern = regexp.MustCompile(`\*\*([^*\s](?:[^\n]*?[^\s])?)\*\*`)
	excessNewlines      = regexp.MustCompile(`\n{3,}`)
)

// postProcess normalizes raw renderer output. The steps run in a fixed
// order: code regions are swapped out before any rewrite and swapped back
// only after the rewrites are done.
func postProcess(raw string, marks sentinels) string {
	p := &protector{marks: marks}

	text := codeMacroPattern.ReplaceAllStringFunc(raw, p.protect)
	text = protectCodeSpans(text, p)

	text = residualBoldPattern.ReplaceAllString(text, "*$1*")
	text = excessNewlines.ReplaceAllString(text, "\n\n")

	text = p.restore(text)
	text = strings.NewReplacer(marks.codeStart, "{{", marks.codeEnd, "}}").Replace(text)

	return strings.TrimSpace(text) + "\n"
}

// protectCodeSpans swaps every complete inline code span, sentinels
// included, for a region placeholder.
func protectCodeSpans(text string, p *protector) string {
	var b strings.Builder
	for {
		start := strings.Index(text, p.marks.codeStart)
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], p.marks.codeEnd)
		if end < 0 {
			break
		}
		end += start + len(p.marks.codeEnd)

		b.WriteString(text[:start])
		b.WriteString(p.protect(text[start:end]))
		text = text[end:]
	}
	b.WriteString(text)
	return b.String()
}
