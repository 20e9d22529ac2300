package formula

import (
	"strconv"
	"strings"
)

// expansion rewrites the arguments of one function call. It returns the
// replacement tokens for the whole call, or false to leave the call as is.
type expansion func(d *decomposer, fn Token, args [][]Token) ([]Token, bool)

// expansions are applied in this order.
var expansions = []struct {
	name   string
	expand expansion
}{
	{"IRR", expandCashFlows(0)},
	{"NPV", expandCashFlows(1)},
	{"SUM", expandSum},
	{"AVERAGE", expandAverage},
}

// Decompose rewrites a formula into primitive arithmetic: IRR and NPV range
// arguments are listed cell by cell, SUM becomes a parenthesized chain of
// additions and AVERAGE that chain divided by the term count. The result has
// no leading "=" and every reference is sheet-qualified. Content that is not
// a formula is returned unchanged.
func Decompose(formula, home string) string {
	if !strings.HasPrefix(formula, "=") {
		return formula
	}
	d := &decomposer{tokens: Parse(formula, home)}
	d.nextID = len(d.tokens)
	for _, e := range expansions {
		d.apply(e.name, e.expand)
	}
	return Join(d.tokens)
}

type decomposer struct {
	tokens []Token
	nextID int
}

func (d *decomposer) token(kind Kind, text string, pad bool) Token {
	t := Token{Kind: kind, Text: text, id: d.nextID, pad: pad}
	d.nextID++
	return t
}

func (d *decomposer) ref(t Token) Token {
	t.id = d.nextID
	d.nextID++
	return t
}

// apply rewrites calls of one function until every call has been seen once.
// Token ids of rewritten calls are recorded, so malformed calls and calls
// kept in place are never revisited.
func (d *decomposer) apply(name string, expand expansion) {
	processed := make(map[int]struct{})
	for {
		start := d.findCall(name, processed)
		if start < 0 {
			return
		}
		processed[d.tokens[start].id] = struct{}{}

		end, args, ok := splitCall(d.tokens, start)
		if !ok {
			continue
		}
		repl, ok := expand(d, d.tokens[start], args)
		if !ok {
			continue
		}
		tail := append([]Token(nil), d.tokens[end+1:]...)
		d.tokens = append(append(d.tokens[:start], repl...), tail...)
	}
}

func (d *decomposer) findCall(name string, processed map[int]struct{}) int {
	for i, t := range d.tokens {
		if t.Kind != Function || !strings.EqualFold(t.Text, name) {
			continue
		}
		if _, ok := processed[t.id]; ok {
			continue
		}
		return i
	}
	return -1
}

// splitCall finds the closing parenthesis of the call at start and splits
// its arguments on top-level commas.
func splitCall(tokens []Token, start int) (end int, args [][]Token, ok bool) {
	open := start + 1
	if open >= len(tokens) || tokens[open].Kind != Punctuation || tokens[open].Text != "(" {
		return 0, nil, false
	}
	depth := 0
	var arg []Token
	for i := open; i < len(tokens); i++ {
		t := tokens[i]
		if t.Kind == Punctuation {
			switch t.Text {
			case "(", "{":
				depth++
				if depth == 1 {
					continue
				}
			case ")", "}":
				depth--
				if depth == 0 {
					if len(arg) > 0 || len(args) > 0 {
						args = append(args, arg)
					}
					return i, args, true
				}
			case ",":
				if depth == 1 {
					args = append(args, arg)
					arg = nil
					continue
				}
			}
		}
		arg = append(arg, t)
	}
	return 0, nil, false
}

// CallName returns the function name when the whole formula is a single
// function call, e.g. "IRR" for "=IRR(A1:A9)".
func CallName(formula string) (string, bool) {
	if !strings.HasPrefix(formula, "=") {
		return "", false
	}
	tokens := Parse(formula, "")
	if len(tokens) < 3 || tokens[0].Kind != Function {
		return "", false
	}
	end, _, ok := splitCall(tokens, 0)
	if !ok || end != len(tokens)-1 {
		return "", false
	}
	return strings.ToUpper(tokens[0].Text), true
}

// singleRange returns the range reference an argument consists of.
func singleRange(arg []Token) (Token, bool) {
	if len(arg) == 1 && arg[0].Kind == Reference && arg[0].Range {
		return arg[0], true
	}
	return Token{}, false
}

// terms flattens arguments into addends, expanding range arguments.
func (d *decomposer) terms(args [][]Token) [][]Token {
	var out [][]Token
	for _, arg := range args {
		if r, ok := singleRange(arg); ok {
			cells := r.Cells()
			if len(cells) == 0 {
				out = append(out, arg)
				continue
			}
			for _, c := range cells {
				out = append(out, []Token{d.ref(Token{Kind: Reference, Ref: c})})
			}
			continue
		}
		if len(arg) > 0 {
			out = append(out, arg)
		}
	}
	return out
}

// sumChain renders "(a + b + ...)".
func (d *decomposer) sumChain(terms [][]Token) []Token {
	out := []Token{d.token(Punctuation, "(", false)}
	for i, term := range terms {
		if i > 0 {
			out = append(out, d.token(Operator, "+", true))
		}
		out = append(out, term...)
	}
	return append(out, d.token(Punctuation, ")", false))
}

func expandSum(d *decomposer, _ Token, args [][]Token) ([]Token, bool) {
	terms := d.terms(args)
	if len(terms) == 0 {
		return nil, false
	}
	return d.sumChain(terms), true
}

func expandAverage(d *decomposer, _ Token, args [][]Token) ([]Token, bool) {
	terms := d.terms(args)
	if len(terms) == 0 {
		return nil, false
	}
	out := []Token{d.token(Punctuation, "(", false)}
	out = append(out, d.sumChain(terms)...)
	out = append(out,
		d.token(Operator, "/", false),
		d.token(Literal, strconv.Itoa(len(terms)), false),
		d.token(Punctuation, ")", false),
	)
	return out, true
}

// expandCashFlows lists range arguments at or after position from cell by
// cell, keeping the function call itself.
func expandCashFlows(from int) expansion {
	return func(d *decomposer, fn Token, args [][]Token) ([]Token, bool) {
		changed := false
		out := []Token{fn, d.token(Punctuation, "(", false)}
		for i, arg := range args {
			if i > 0 {
				out = append(out, d.token(Punctuation, ",", false))
			}
			r, ok := singleRange(arg)
			if i < from || !ok {
				out = append(out, arg...)
				continue
			}
			cells := r.Cells()
			if len(cells) == 0 {
				out = append(out, arg...)
				continue
			}
			changed = true
			for j, c := range cells {
				if j > 0 {
					out = append(out, d.token(Punctuation, ",", false))
				}
				out = append(out, d.ref(Token{Kind: Reference, Ref: c}))
			}
		}
		out = append(out, d.token(Punctuation, ")", false))
		return out, changed
	}
}
