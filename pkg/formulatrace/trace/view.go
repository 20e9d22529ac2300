package trace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/formula"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/models"
)

// Unlabeled is shown for cells without a header.
const Unlabeled = "unlabeled"

const briefFormulaLimit = 30

// Tree converts the arena into a nested dependency tree.
func (r *Result) Tree() *models.DependencyNode {
	if len(r.Nodes) == 0 {
		return nil
	}
	root := r.treeNode(0)
	return &root
}

func (r *Result) treeNode(idx int) models.DependencyNode {
	n := r.Nodes[idx]
	out := models.DependencyNode{
		Index:      n.Index,
		Ref:        n.Ref.String(),
		Kind:       n.Kind.String(),
		Content:    n.Content,
		Label:      n.Label,
		Expression: n.Expression,
		Value:      n.Value,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, r.treeNode(c))
	}
	return out
}

// Steps lists the expanded cells in trace order.
func (r *Result) Steps() []models.TraceStep {
	steps := make([]models.TraceStep, 0, len(r.Order))
	for _, idx := range r.Order {
		n := r.Nodes[idx]
		steps = append(steps, models.TraceStep{
			Index:      n.Index,
			Ref:        n.Ref.String(),
			Label:      n.Label,
			Formula:    n.Content,
			Expression: n.Expression,
		})
	}
	return steps
}

// View builds the visualization payload of the tree.
func (r *Result) View() *models.TreeView {
	if len(r.Nodes) == 0 {
		return nil
	}
	root := r.viewNode(0)
	return &root
}

func (r *Result) viewNode(idx int) models.TreeView {
	n := r.Nodes[idx]
	brief := Brief(n)
	out := models.TreeView{
		ID:       strconv.Itoa(n.Index),
		Brief:    brief,
		Detail:   detail(n, brief),
		Children: []models.TreeView{},
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, r.viewNode(c))
	}
	return out
}

// Brief summarizes a node as " label [type] = value". The type is the
// function name for single calls, the formula itself when short, or its
// truncated prefix.
func Brief(n Node) string {
	label := n.Label
	if label == "" {
		label = Unlabeled
	}
	value := n.Value
	if value == "" {
		value = "N/A"
	}
	return fmt.Sprintf(" %s %s = %s", label, contentType(n), value)
}

func contentType(n Node) string {
	if n.Kind == ErrorNode {
		return "[ERROR]"
	}
	content := n.Content
	if content == "" {
		return ""
	}
	if !strings.HasPrefix(content, "=") {
		if _, err := strconv.ParseFloat(strings.TrimSpace(content), 64); err == nil {
			return "[VALUE]"
		}
		return ""
	}
	if name, ok := formula.CallName(content); ok {
		return "[" + name + "]"
	}
	runes := []rune(content)
	if len(runes) <= briefFormulaLimit {
		return "[" + content + "]"
	}
	return "[" + string(runes[:briefFormulaLimit-3]) + "...]"
}

func detail(n Node, brief string) string {
	return fmt.Sprintf("summary:%s\ndetail: %s: %s  %s  value: %s",
		brief, n.Ref, n.Content, n.Label, n.Value)
}
