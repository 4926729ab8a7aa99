package parser

import (
	"io"

	verr "github.com/fuclang/lrgen/error"
)

type RootNode struct {
	Directives  []*DirectiveNode
	Productions []*ProductionNode
}

// DirectiveNode is a top-level directive such as `%left PLUS MINUS;`. Group is set only by a terminal group
// `%terminal relop: LESS GREATER;`, in which case Parameters are the categories of the group.
type DirectiveNode struct {
	Name       string
	Group      *ParameterNode
	Parameters []*ParameterNode
	Pos        Position
}

// ParameterNode holds exactly one of an identifier, a pattern or a literal.
type ParameterNode struct {
	ID      string
	Pattern string
	Literal string
	Pos     Position
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

type AlternativeNode struct {
	Elements []*ElementNode
	Prec     *ElementNode
	Label    string
	Pos      Position
}

// ElementNode refers to a symbol either by its name or by a literal.
type ElementNode struct {
	ID      string
	Literal string
	Pos     Position
}

// Name returns the name of the symbol the element refers to. A literal names the terminal matching it.
func (n *ElementNode) Name() string {
	if n.ID != "" {
		return n.ID
	}
	return n.Literal
}

const (
	dirName     = "name"
	dirStart    = "start"
	dirCategory = "category"
	dirSkip     = "skip"
	dirTerminal = "terminal"
	dirLeft     = "left"
	dirRight    = "right"
	dirPrec     = "prec"
)

func raiseSyntaxError(synErr *SyntaxError, pos Position) {
	panic(newSpecError(synErr, "", pos))
}

// Parse reads a grammar in the description format.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		switch e := err.(type) {
		case *verr.SpecError:
			retErr = verr.SpecErrors{e}
		case error:
			retErr = e
		default:
			panic(err)
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		if p.consume(tokenKindEOF) {
			return root
		}
		if p.consume(tokenKindDirective) {
			dir := p.parseDirective()
			root.Directives = append(root.Directives, dir)
			continue
		}
		root.Productions = append(root.Productions, p.parseProduction())
	}
}

func (p *parser) parseDirective() *DirectiveNode {
	dirTok := p.lastTok
	name := dirTok.text[1:]
	switch name {
	case dirName, dirStart, dirCategory, dirSkip, dirTerminal, dirLeft, dirRight:
	case dirPrec:
		raiseSyntaxError(synErrPrecOutOfPosition, dirTok.pos)
	default:
		panic(newSpecError(synErrUnknownDirective, dirTok.text, dirTok.pos))
	}

	dir := &DirectiveNode{
		Name: name,
		Pos:  dirTok.pos,
	}
	for {
		param := p.parseParameter()
		if param == nil {
			break
		}
		if p.consume(tokenKindColon) {
			if dir.Group != nil || len(dir.Parameters) > 0 {
				raiseSyntaxError(synErrTopLevelDirNoSemicolon, p.lastTok.pos)
			}
			dir.Group = param
			continue
		}
		dir.Parameters = append(dir.Parameters, param)
	}
	if dir.Group != nil && len(dir.Parameters) == 0 {
		raiseSyntaxError(synErrDirGroupNoParam, dir.Group.Pos)
	}
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrTopLevelDirNoSemicolon, p.peekPos())
	}
	return dir
}

func (p *parser) parseParameter() *ParameterNode {
	switch {
	case p.consume(tokenKindID):
		return &ParameterNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		}
	case p.consume(tokenKindPattern):
		return &ParameterNode{
			Pattern: p.lastTok.text,
			Pos:     p.lastTok.pos,
		}
	case p.consume(tokenKindLiteral):
		return &ParameterNode{
			Literal: p.lastTok.text,
			Pos:     p.lastTok.pos,
		}
	}
	return nil
}

func (p *parser) parseProduction() *ProductionNode {
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoProductionName, p.peekPos())
	}
	lhs := p.lastTok
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(synErrNoColon, p.peekPos())
	}
	alt := p.parseAlternative()
	rhs := []*AlternativeNode{alt}
	for p.consume(tokenKindOr) {
		rhs = append(rhs, p.parseAlternative())
	}
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrNoSemicolon, p.peekPos())
	}
	return &ProductionNode{
		LHS: lhs.text,
		RHS: rhs,
		Pos: lhs.pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	alt := &AlternativeNode{
		Pos: p.peekPos(),
	}
	for {
		elem := p.parseElement()
		if elem == nil {
			break
		}
		alt.Elements = append(alt.Elements, elem)
	}
	if p.consume(tokenKindPattern) {
		raiseSyntaxError(synErrPatternInAlt, p.lastTok.pos)
	}
	if p.consume(tokenKindDirective) {
		dirTok := p.lastTok
		if dirTok.text[1:] != dirPrec {
			panic(newSpecError(synErrUnknownDirective, dirTok.text, dirTok.pos))
		}
		alt.Prec = p.parseElement()
		if alt.Prec == nil {
			raiseSyntaxError(synErrNoPrecSymbol, dirTok.pos)
		}
	}
	if p.consume(tokenKindLabelMarker) {
		if !p.consume(tokenKindID) {
			raiseSyntaxError(synErrNoLabel, p.peekPos())
		}
		alt.Label = p.lastTok.text
	}
	return alt
}

func (p *parser) parseElement() *ElementNode {
	switch {
	case p.consume(tokenKindID):
		return &ElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		}
	case p.consume(tokenKindLiteral):
		return &ElementNode{
			Literal: p.lastTok.text,
			Pos:     p.lastTok.pos,
		}
	}
	return nil
}

func (p *parser) peekPos() Position {
	tok := p.peek()
	return tok.pos
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		p.peekedTok = p.read()
	}
	return p.peekedTok
}

func (p *parser) read() *token {
	tok, err := p.lex.next()
	if err != nil {
		panic(err)
	}
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(synErrInvalidToken, tok.pos)
	}
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	if tok.kind != expected {
		return false
	}
	p.peekedTok = nil
	p.lastTok = tok
	return true
}
