// Package trace walks the dependency tree of an output cell breadth-first.
package trace

import (
	"errors"
	"fmt"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/classify"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/formula"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

// DefaultMaxPending bounds the queue of cells waiting to be expanded.
const DefaultMaxPending = 3000

// ErrPendingLimit indicates a trace exceeded its pending bound.
var ErrPendingLimit = errors.New("pending limit exceeded")

// ErrInvalidOutput indicates the traced cell does not exist or holds no formula.
var ErrInvalidOutput = errors.New("invalid output cell")

// PendingLimitError reports the cell whose trace was aborted.
type PendingLimitError struct {
	Output  workbook.Ref
	Pending int
	Limit   int
}

func (e *PendingLimitError) Error() string {
	return fmt.Sprintf("trace of %s aborted: %d pending cells exceed limit %d", e.Output, e.Pending, e.Limit)
}

func (e *PendingLimitError) Unwrap() error {
	return ErrPendingLimit
}

// NodeKind classifies a node of the dependency tree.
type NodeKind int

const (
	// FormulaNode is an expanded formula cell.
	FormulaNode NodeKind = iota
	// InputNode is an input cell; it is never expanded.
	InputNode
	// ErrorNode is a reference to a missing sheet or an out-of-bounds cell.
	ErrorNode
	// RevisitNode is a formula cell already expanded elsewhere in the trace.
	RevisitNode
)

// String returns the marker used in reports.
func (k NodeKind) String() string {
	switch k {
	case FormulaNode:
		return "FORMULA"
	case InputNode:
		return "INPUT"
	case ErrorNode:
		return "ERROR"
	case RevisitNode:
		return "REVISIT"
	default:
		return "UNKNOWN"
	}
}

// Node is one visited cell. Children hold indexes into Result.Nodes and
// always point forward, so the tree is acyclic.
type Node struct {
	// Index is unique and increasing within one trace.
	Index int
	// Ref is the cell address.
	Ref workbook.Ref
	// Kind tells how the reference was resolved.
	Kind NodeKind
	// Content is the original cell content or an error description.
	Content string
	// Label is the header label of the cell.
	Label string
	// Value is the cached display value of the cell.
	Value string
	// Decomposed is the formula with aggregate functions expanded.
	Decomposed string
	// Expression is Decomposed rendered with labels, or the kind marker
	// for input and error leaves.
	Expression string
	// Children are node indexes in reference occurrence order.
	Children []int
}

// Headers supplies labels and display values.
type Headers interface {
	Label(ref workbook.Ref) string
	Value(ref workbook.Ref) string
}

// Config configures a Tracer.
type Config struct {
	// MaxPending bounds the pending queue; zero selects DefaultMaxPending.
	MaxPending int
}

// Tracer traces outputs against an immutable workbook. It keeps no per-trace
// state, so one Tracer may run traces concurrently.
type Tracer struct {
	wb      *workbook.Workbook
	roles   *classify.Index
	headers Headers
	cfg     Config
}

// New creates a Tracer.
func New(wb *workbook.Workbook, roles *classify.Index, headers Headers, cfg Config) *Tracer {
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	return &Tracer{wb: wb, roles: roles, headers: headers, cfg: cfg}
}

func (t *Tracer) labels() formula.Labels {
	if t.headers == nil {
		return nil
	}
	return t.headers
}

// Result is the outcome of one trace.
type Result struct {
	// Nodes is the arena; Nodes[0] is the root.
	Nodes []Node
	// Order lists the indexes of expanded nodes in dequeue order.
	Order []int
	// BaseCells lists inputs and literals reached, in first-seen order.
	BaseCells []workbook.Ref

	labels formula.Labels
}

// Root returns the traced output node.
func (r *Result) Root() *Node {
	return &r.Nodes[0]
}

// Trace expands the output cell and every formula it transitively depends on.
func (t *Tracer) Trace(output workbook.Ref) (*Result, error) {
	cell, err := t.wb.Resolve(output)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if !cell.IsFormula() {
		return nil, fmt.Errorf("%w: %s holds no formula", ErrInvalidOutput, output)
	}

	s := &state{
		tracer: t,
		result: Result{labels: t.labels()},
		seen:   map[workbook.Ref]struct{}{output: {}},
		base:   make(map[workbook.Ref]struct{}),
	}
	root := s.node(output, FormulaNode, cell.Content)
	queue := []int{root}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		s.result.Order = append(s.result.Order, idx)

		n := s.result.Nodes[idx]
		for _, ref := range formula.References(n.Decomposed, n.Ref.Sheet) {
			child, expand := s.visit(ref)
			if child < 0 {
				continue
			}
			s.result.Nodes[idx].Children = append(s.result.Nodes[idx].Children, child)
			if !expand {
				continue
			}
			queue = append(queue, child)
			if len(queue) > t.cfg.MaxPending {
				return nil, &PendingLimitError{Output: output, Pending: len(queue), Limit: t.cfg.MaxPending}
			}
		}
	}
	return &s.result, nil
}

// state is local to one Trace call.
type state struct {
	tracer *Tracer
	result Result
	seen   map[workbook.Ref]struct{}
	base   map[workbook.Ref]struct{}
}

func (s *state) node(ref workbook.Ref, kind NodeKind, content string) int {
	n := Node{
		Index:   len(s.result.Nodes),
		Ref:     ref,
		Kind:    kind,
		Content: content,
	}
	if s.tracer.headers != nil {
		n.Label = s.tracer.headers.Label(ref)
		n.Value = s.tracer.headers.Value(ref)
	}
	switch kind {
	case FormulaNode, RevisitNode:
		n.Decomposed = formula.Decompose(content, ref.Sheet)
		n.Expression = formula.Render(n.Decomposed, ref.Sheet, s.result.labels)
	default:
		n.Expression = kind.String()
	}
	s.result.Nodes = append(s.result.Nodes, n)
	return n.Index
}

func (s *state) addBase(ref workbook.Ref) {
	if _, ok := s.base[ref]; ok {
		return
	}
	s.base[ref] = struct{}{}
	s.result.BaseCells = append(s.result.BaseCells, ref)
}

// visit classifies one reference occurrence. It returns the child node
// index (-1 for literals, which get no node) and whether to expand it.
func (s *state) visit(ref workbook.Ref) (int, bool) {
	role := s.tracer.roles.RoleAt(ref)
	switch role {
	case classify.Error:
		return s.node(ref, ErrorNode, errorContent(s.tracer.wb, ref)), false
	case classify.Input:
		s.addBase(ref)
		cell, _ := s.tracer.wb.Resolve(ref)
		return s.node(ref, InputNode, cell.Content), false
	case classify.Formula, classify.OutputCandidate:
		cell, _ := s.tracer.wb.Resolve(ref)
		if _, ok := s.seen[ref]; ok {
			return s.node(ref, RevisitNode, cell.Content), false
		}
		s.seen[ref] = struct{}{}
		return s.node(ref, FormulaNode, cell.Content), true
	default:
		s.addBase(ref)
		return -1, false
	}
}

func errorContent(wb *workbook.Workbook, ref workbook.Ref) string {
	if _, ok := wb.Sheet(ref.Sheet); !ok {
		return "invalid sheet reference: " + ref.String()
	}
	return "invalid cell reference: " + ref.String()
}
