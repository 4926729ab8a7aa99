package fuc

import (
	"fmt"
	"strings"
)

// Every node prints itself as an S-expression.

type Node interface {
	fmt.Stringer
}

type Type interface {
	Node
	typeNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type Program struct {
	Decls []*Decl
	Stmts []Stmt
}

func (p *Program) String() string {
	return sexp("program", append(declNodes(p.Decls), stmtNodes(p.Stmts)...)...)
}

type Decl struct {
	Type Type
	Name string
	Row  int
	Col  int
}

func (d *Decl) String() string {
	return fmt.Sprintf("(decl %v %v)", d.Type, d.Name)
}

// BasicType is one of long, double, bool and string.
type BasicType struct {
	Name string
}

func (*BasicType) typeNode() {}

func (t *BasicType) String() string {
	return t.Name
}

type ArrayType struct {
	Elem Type
	Size int64
}

func (*ArrayType) typeNode() {}

func (t *ArrayType) String() string {
	return fmt.Sprintf("(array %v %v)", t.Elem, t.Size)
}

type RecordType struct {
	Fields []*Decl
}

func (*RecordType) typeNode() {}

func (t *RecordType) String() string {
	return sexp("record", declNodes(t.Fields)...)
}

type Block struct {
	Decls []*Decl
	Stmts []Stmt
}

func (*Block) stmtNode() {}

func (b *Block) String() string {
	return sexp("block", append(declNodes(b.Decls), stmtNodes(b.Stmts)...)...)
}

type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmtNode() {}

func (s *ExprStmt) String() string {
	return s.X.String()
}

// If has a nil Else when the statement has no else branch.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*If) stmtNode() {}

func (s *If) String() string {
	if s.Else == nil {
		return sexp("if", s.Cond, s.Then)
	}
	return sexp("if", s.Cond, s.Then, s.Else)
}

type While struct {
	Cond Expr
	Body Stmt
}

func (*While) stmtNode() {}

func (s *While) String() string {
	return sexp("while", s.Cond, s.Body)
}

type DoWhile struct {
	Body Stmt
	Cond Expr
}

func (*DoWhile) stmtNode() {}

func (s *DoWhile) String() string {
	return sexp("do", s.Body, s.Cond)
}

type Break struct{}

func (*Break) stmtNode() {}

func (*Break) String() string {
	return "(break)"
}

type Return struct {
	Value Expr
}

func (*Return) stmtNode() {}

func (s *Return) String() string {
	if s.Value == nil {
		return "(return)"
	}
	return sexp("return", s.Value)
}

type Print struct {
	Value Expr
}

func (*Print) stmtNode() {}

func (s *Print) String() string {
	return sexp("print", s.Value)
}

type Assign struct {
	Target Expr
	Value  Expr
}

func (*Assign) exprNode() {}

func (e *Assign) String() string {
	return sexp("=", e.Target, e.Value)
}

type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

func (*Binary) exprNode() {}

func (e *Binary) String() string {
	return sexp(e.Op, e.X, e.Y)
}

type Unary struct {
	Op string
	X  Expr
}

func (*Unary) exprNode() {}

func (e *Unary) String() string {
	return sexp(e.Op, e.X)
}

// Literal keeps the lexeme of a literal. Kind is the token category: NUM, REAL, TRUE, FALSE or STRING.
type Literal struct {
	Kind  string
	Value string
}

func (*Literal) exprNode() {}

func (e *Literal) String() string {
	return e.Value
}

type Ident struct {
	Name string
	Row  int
	Col  int
}

func (*Ident) exprNode() {}

func (e *Ident) String() string {
	return e.Name
}

type Index struct {
	X     Expr
	Index Expr
}

func (*Index) exprNode() {}

func (e *Index) String() string {
	return sexp("[]", e.X, e.Index)
}

type Field struct {
	X    Expr
	Name string
}

func (*Field) exprNode() {}

func (e *Field) String() string {
	return fmt.Sprintf("(. %v %v)", e.X, e.Name)
}

func sexp(head string, nodes ...Node) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(head)
	for _, n := range nodes {
		b.WriteString(" ")
		b.WriteString(n.String())
	}
	b.WriteString(")")
	return b.String()
}

func declNodes(decls []*Decl) []Node {
	nodes := make([]Node, len(decls))
	for i, d := range decls {
		nodes[i] = d
	}
	return nodes
}

func stmtNodes(stmts []Stmt) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}
