// Package synth substitutes formulas into each other until an output is
// expressed over input labels only.
package synth

import (
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/formula"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

const (
	// Unresolvable replaces a reference that would recurse into itself.
	Unresolvable = "#UNRESOLVABLE"
	// Failed is returned when synthesis produces nothing.
	Failed = "#SYNTHESIS_FAILED"
)

// Synthesizer holds the decomposed formulas and the input labels of a
// workbook. It memoizes results and is not safe for concurrent use.
type Synthesizer struct {
	records map[workbook.Ref]string
	inputs  map[workbook.Ref]string
	memo    map[workbook.Ref]expansion
}

type expansion struct {
	text string
	atom bool
}

// New creates a Synthesizer. records maps formula cells to their decomposed
// formulas; inputs maps input cells to their labels.
func New(records, inputs map[workbook.Ref]string) *Synthesizer {
	return &Synthesizer{
		records: records,
		inputs:  inputs,
		memo:    make(map[workbook.Ref]expansion),
	}
}

// Synthesize returns the closed-form expression of a cell.
func (s *Synthesizer) Synthesize(ref workbook.Ref) string {
	out := s.expand(ref, make(map[workbook.Ref]struct{}))
	if strings.TrimSpace(out.text) == "" {
		return Failed
	}
	return out.text
}

func (s *Synthesizer) expand(ref workbook.Ref, path map[workbook.Ref]struct{}) expansion {
	if label, ok := s.inputs[ref]; ok {
		if label == "" {
			return expansion{text: ref.String(), atom: true}
		}
		return expansion{text: label, atom: true}
	}
	decomposed, ok := s.records[ref]
	if !ok {
		return expansion{text: ref.String(), atom: true}
	}
	if _, ok := path[ref]; ok {
		return expansion{text: Unresolvable, atom: true}
	}
	if e, ok := s.memo[ref]; ok {
		return e
	}

	path[ref] = struct{}{}
	defer delete(path, ref)

	tokens := formula.Parse(decomposed, ref.Sheet)
	var b strings.Builder
	for _, t := range tokens {
		if t.Kind != formula.Reference || t.Range {
			b.WriteString(t.String())
			continue
		}
		sub := s.expand(t.Ref, path)
		if sub.atom {
			b.WriteString(sub.text)
		} else {
			b.WriteString("(" + sub.text + ")")
		}
	}

	// A single token is either atomic or already parenthesized.
	e := expansion{text: b.String(), atom: len(tokens) == 1 || enclosed(tokens)}
	if !strings.Contains(e.text, Unresolvable) {
		s.memo[ref] = e
	}
	return e
}

// enclosed reports whether the first parenthesis closes at the last token.
func enclosed(tokens []formula.Token) bool {
	if len(tokens) < 2 || !isPunct(tokens[0], "(") || !isPunct(tokens[len(tokens)-1], ")") {
		return false
	}
	depth := 0
	for i, t := range tokens {
		switch {
		case isPunct(t, "("):
			depth++
		case isPunct(t, ")"):
			depth--
			if depth == 0 {
				return i == len(tokens)-1
			}
		}
	}
	return false
}

func isPunct(t formula.Token, text string) bool {
	return t.Kind == formula.Punctuation && t.Text == text
}
