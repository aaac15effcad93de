package converter

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// sentinels are the reserved markers substituted for protected content during
// one conversion. Every marker carries a per-call nonce, so text from the
// input can never be mistaken for one.
type sentinels struct {
	nonce     string
	codeStart string
	codeEnd   string
}

func newSentinels() sentinels {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return sentinels{
		nonce:     nonce,
		codeStart: "\x00CS" + nonce + "\x00",
		codeEnd:   "\x00CE" + nonce + "\x00",
	}
}

// region returns the placeholder for the i-th protected region.
func (s sentinels) region(i int) string {
	return "\x00CODE_BLOCK_" + s.nonce + "_" + strconv.Itoa(i) + "\x00"
}

// protector swaps protected regions for indexed placeholders and back.
type protector struct {
	marks   sentinels
	regions []string
}

func (p *protector) protect(text string) string {
	placeholder := p.marks.region(len(p.regions))
	p.regions = append(p.regions, text)
	return placeholder
}

func (p *protector) restore(text string) string {
	for i, region := range p.regions {
		text = strings.Replace(text, p.marks.region(i), region, 1)
	}
	return text
}
