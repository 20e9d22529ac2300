// Package formula tokenizes, decomposes and renders spreadsheet formulas.
//
// Every operation in this package works on the token stream produced by
// Parse, so reference extraction, decomposition, rendering and synthesis
// share a single grammar. A bare reference inherits the most recent explicit
// sheet qualifier of the same formula and defaults to the home sheet.
package formula

import (
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
	"github.com/xuri/efp"
)

// Kind classifies a token.
type Kind int

const (
	// Operator is an arithmetic, comparison or concatenation operator.
	Operator Kind = iota
	// Punctuation is a parenthesis, brace or argument separator.
	Punctuation
	// Reference is a cell or range reference resolved to a sheet.
	Reference
	// Literal is a number, string, logical, error value or defined name.
	Literal
	// Function is a function name; the opening parenthesis follows as
	// a separate Punctuation token.
	Function
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Operator:
		return "operator"
	case Punctuation:
		return "punctuation"
	case Reference:
		return "reference"
	case Literal:
		return "literal"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// Token is one element of a parsed formula.
type Token struct {
	// Kind is the token class.
	Kind Kind
	// Text is the source text of non-reference tokens. String literals keep
	// their surrounding quotes.
	Text string
	// Ref is the (start) cell of a Reference token.
	Ref workbook.Ref
	// End is the last cell of a range reference.
	End workbook.Ref
	// Range reports whether a Reference token spans more than one address.
	Range bool

	id  int
	pad bool
}

// String returns the formula text of the token. References are always
// sheet-qualified.
func (t Token) String() string {
	switch {
	case t.Kind == Reference && t.Range:
		return t.Ref.String() + ":" + t.End.Cell()
	case t.Kind == Reference:
		return t.Ref.String()
	case t.pad:
		return " " + t.Text + " "
	default:
		return t.Text
	}
}

// Cells returns the addresses covered by a Reference token in row-major
// order. Ranges larger than MaxRangeCells yield nothing.
func (t Token) Cells() []workbook.Ref {
	if t.Kind != Reference {
		return nil
	}
	if !t.Range {
		return []workbook.Ref{t.Ref}
	}
	return ExpandRange(t.Ref, t.End)
}

// Parse tokenizes a formula, with or without its leading "=". Unqualified
// references inherit the most recent explicit sheet qualifier, else home.
func Parse(formula, home string) []Token {
	body := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if body == "" {
		return nil
	}

	ps := efp.ExcelParser()
	raw := ps.Parse(body)

	p := &parser{home: home, current: home}
	for _, tok := range raw {
		p.add(tok)
	}
	return p.tokens
}

// parser converts efp tokens into Tokens, tracking the qualifier state and
// which closing symbol each open group needs.
type parser struct {
	home    string
	current string
	tokens  []Token
	closers []string
}

func (p *parser) emit(kind Kind, text string) {
	p.tokens = append(p.tokens, Token{Kind: kind, Text: text, id: len(p.tokens)})
}

func (p *parser) add(tok efp.Token) {
	switch tok.TType {
	case efp.TokenTypeWhitespace:
		return
	case efp.TokenTypeFunction:
		p.addFunction(tok)
	case efp.TokenTypeSubexpression:
		if tok.TSubType == efp.TokenSubTypeStart {
			p.emit(Punctuation, "(")
			p.closers = append(p.closers, ")")
		} else {
			p.close()
		}
	case efp.TokenTypeArgument:
		p.emit(Punctuation, ",")
	case efp.TokenTypeOperatorPrefix, efp.TokenTypeOperatorInfix, efp.TokenTypeOperatorPostfix:
		p.emit(Operator, tok.TValue)
	case efp.TokenTypeOperand:
		p.addOperand(tok)
	default:
		p.emit(Literal, tok.TValue)
	}
}

func (p *parser) addFunction(tok efp.Token) {
	if tok.TSubType == efp.TokenSubTypeStop {
		p.close()
		return
	}
	switch strings.ToUpper(tok.TValue) {
	case "ARRAY":
		p.emit(Punctuation, "{")
		p.closers = append(p.closers, "}")
	case "ARRAYROW":
		p.closers = append(p.closers, "")
	default:
		p.emit(Function, tok.TValue)
		p.emit(Punctuation, "(")
		p.closers = append(p.closers, ")")
	}
}

func (p *parser) close() {
	closer := ")"
	if n := len(p.closers); n > 0 {
		closer = p.closers[n-1]
		p.closers = p.closers[:n-1]
	}
	if closer != "" {
		p.emit(Punctuation, closer)
	}
}

func (p *parser) addOperand(tok efp.Token) {
	switch tok.TSubType {
	case efp.TokenSubTypeText:
		p.emit(Literal, quoteText(tok.TValue))
	case efp.TokenSubTypeRange:
		ref, ok := p.reference(tok.TValue)
		if !ok {
			p.emit(Literal, tok.TValue)
			return
		}
		ref.id = len(p.tokens)
		p.tokens = append(p.tokens, ref)
	default:
		p.emit(Literal, tok.TValue)
	}
}

// reference parses a range operand. Defined names, whole-column and
// whole-row ranges are not cell references and report false.
func (p *parser) reference(text string) (Token, bool) {
	sheet := ""
	explicit := false
	cell := text
	if idx := strings.LastIndex(text, "!"); idx >= 0 {
		sheet = workbook.UnquoteSheet(text[:idx])
		cell = text[idx+1:]
		explicit = true
	}
	if !explicit {
		sheet = p.current
	}

	from, to, isRange := strings.Cut(cell, ":")
	start, err := workbook.ParseRef(from, sheet)
	if err != nil {
		return Token{}, false
	}
	tok := Token{Kind: Reference, Ref: start}
	if isRange {
		end, err := workbook.ParseRef(to, sheet)
		if err != nil {
			return Token{}, false
		}
		tok.Range = true
		tok.Ref, tok.End = normalizeRange(start, end)
	}

	if explicit {
		p.current = sheet
	}
	return tok, true
}

// normalizeRange orders the corners of a range top-left to bottom-right.
func normalizeRange(a, b workbook.Ref) (workbook.Ref, workbook.Ref) {
	if a.Row > b.Row {
		a.Row, b.Row = b.Row, a.Row
	}
	if a.Col > b.Col {
		a.Col, b.Col = b.Col, a.Col
	}
	b.Sheet = a.Sheet
	return a, b
}

func quoteText(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Join concatenates tokens back into formula text (without "=").
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.String())
	}
	return b.String()
}
