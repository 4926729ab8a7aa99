package parser

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SemanticActionSet is a set of semantic actions a parser calls. The values returned by the actions are
// kept on the value stack of a parser.
type SemanticActionSet interface {
	// Shift runs when the parser shifts a token. The result is pushed onto the value stack.
	Shift(tok VToken) interface{}

	// Reduce runs when the parser reduces an RHS of a production to its LHS. `values` holds the values of the
	// RHS symbols in RHS order. An error stops the parser.
	Reduce(prodNum int, values []interface{}) (interface{}, error)
}

var (
	_ SemanticActionSet = &ActionRegistry{}
	_ SemanticActionSet = &SyntaxTreeActionSet{}
)

type ShiftFunc func(tok VToken) interface{}

type ReduceFunc func(values []interface{}) (interface{}, error)

// ActionRegistry dispatches reductions to functions registered per production. A production without
// a function passes its value through: an empty RHS yields nil, and a single-symbol RHS yields the value of
// the symbol. Any other production needs a function.
type ActionRegistry struct {
	gram   Grammar
	shift  ShiftFunc
	reduce map[int]ReduceFunc
	errs   []error
}

func NewActionRegistry(gram Grammar) *ActionRegistry {
	return &ActionRegistry{
		gram:   gram,
		reduce: map[int]ReduceFunc{},
	}
}

// OnShift replaces the default shift action, which pushes a token itself.
func (r *ActionRegistry) OnShift(f ShiftFunc) *ActionRegistry {
	r.shift = f
	return r
}

func (r *ActionRegistry) Register(prod int, f ReduceFunc) *ActionRegistry {
	if prod <= r.gram.StartProduction() || prod >= r.gram.ProductionCount() {
		r.errs = append(r.errs, fmt.Errorf("production %v does not exist", prod))
		return r
	}
	r.reduce[prod] = f
	return r
}

// RegisterLabel registers a function to all productions having a label.
func (r *ActionRegistry) RegisterLabel(label string, f ReduceFunc) *ActionRegistry {
	found := false
	for prod := r.gram.StartProduction() + 1; prod < r.gram.ProductionCount(); prod++ {
		if r.gram.ProductionLabel(prod) != label {
			continue
		}
		r.reduce[prod] = f
		found = true
	}
	if !found {
		r.errs = append(r.errs, fmt.Errorf("label '%v' is not attached to any production", label))
	}
	return r
}

// Validate reports registration errors and productions whose values cannot be passed through.
func (r *ActionRegistry) Validate() error {
	var msgs []string
	for _, err := range r.errs {
		msgs = append(msgs, err.Error())
	}
	for prod := r.gram.StartProduction() + 1; prod < r.gram.ProductionCount(); prod++ {
		if _, ok := r.reduce[prod]; ok {
			continue
		}
		if r.gram.AlternativeSymbolCount(prod) > 1 {
			msgs = append(msgs, fmt.Sprintf("production %v of %v needs a semantic action", prod, r.gram.NonTerminal(r.gram.LHS(prod))))
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid semantic actions:\n%v", strings.Join(msgs, "\n"))
}

func (r *ActionRegistry) Shift(tok VToken) interface{} {
	if r.shift != nil {
		return r.shift(tok)
	}
	return tok
}

func (r *ActionRegistry) Reduce(prodNum int, values []interface{}) (interface{}, error) {
	if f, ok := r.reduce[prodNum]; ok {
		return f(values)
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	}
	return nil, fmt.Errorf("production %v of %v has no semantic action", prodNum, r.gram.NonTerminal(r.gram.LHS(prodNum)))
}

// Node is a node of a concrete syntax tree. A leaf is a terminal and has a text.
type Node struct {
	KindName string
	Label    string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

// SyntaxTreeActionSet builds a concrete syntax tree.
type SyntaxTreeActionSet struct {
	gram Grammar
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram: gram,
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken) interface{} {
	row, col := tok.Position()
	kind := tok.Category()
	if term, ok := a.gram.CategoryToTerminal(kind); ok {
		kind = a.gram.Terminal(term)
	}
	return &Node{
		KindName: kind,
		Text:     string(tok.Lexeme()),
		Row:      row,
		Col:      col,
	}
}

func (a *SyntaxTreeActionSet) Reduce(prodNum int, values []interface{}) (interface{}, error) {
	children := make([]*Node, len(values))
	for i, v := range values {
		n, ok := v.(*Node)
		if !ok {
			return nil, fmt.Errorf("a syntax tree node was expected: %T", v)
		}
		children[i] = n
	}
	return &Node{
		KindName: a.gram.NonTerminal(a.gram.LHS(prodNum)),
		Label:    a.gram.ProductionLabel(prodNum),
		Children: children,
	}, nil
}

// PrintTree prints a syntax tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Children == nil && node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// Leaves returns the terminals of a tree from left to right.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if len(n.Children) == 0 {
		if n.Text == "" && n.Row == 0 {
			return nil
		}
		return []*Node{n}
	}
	var leaves []*Node
	for _, c := range n.Children {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// Labels returns the distinct production labels of a grammar in ascending order.
func Labels(gram Grammar) []string {
	seen := map[string]struct{}{}
	var labels []string
	for prod := gram.StartProduction() + 1; prod < gram.ProductionCount(); prod++ {
		l := gram.ProductionLabel(prod)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
