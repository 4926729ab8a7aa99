package parser

import (
	"io"

	verr "github.com/fuclang/lrgen/error"
	"github.com/fuclang/lrgen/grammar"
)

// Load reads a grammar in the description format and builds it.
func Load(src io.Reader) (*grammar.Grammar, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	b, err := root.Builder()
	if err != nil {
		return nil, err
	}
	return b.Build()
}

type builderState struct {
	b          *grammar.Builder
	errs       verr.SpecErrors
	named      bool
	started    bool
	categories map[string]struct{}
	terminals  map[string]struct{}
	literals   []*ElementNode
}

// Builder converts the tree into a grammar builder. Errors found in directives are returned all at once; errors
// concerning the grammar itself are detected by the builder.
func (root *RootNode) Builder() (*grammar.Builder, error) {
	s := &builderState{
		b:          grammar.NewBuilder(""),
		categories: map[string]struct{}{},
		terminals:  map[string]struct{}{},
	}

	for _, dir := range root.Directives {
		s.directive(dir)
	}
	for _, prod := range root.Productions {
		for _, alt := range prod.RHS {
			rhs := make([]string, 0, len(alt.Elements))
			for _, elem := range alt.Elements {
				if elem.Literal != "" {
					s.literals = append(s.literals, elem)
				}
				rhs = append(rhs, elem.Name())
			}
			s.b.At(alt.Pos.Row, alt.Pos.Col)
			pb := s.b.Production(prod.LHS, rhs...)
			if alt.Prec != nil {
				if alt.Prec.Literal != "" {
					s.literals = append(s.literals, alt.Prec)
				}
				pb.Prec(alt.Prec.Name())
			}
			if alt.Label != "" {
				pb.Label(alt.Label)
			}
		}
	}

	// A literal used as a symbol declares a terminal named by its text. When the grammar carries patterns,
	// the literal also gets a category matching its text verbatim.
	for _, lit := range s.literals {
		if _, ok := s.terminals[lit.Literal]; ok {
			continue
		}
		s.terminals[lit.Literal] = struct{}{}
		s.b.At(lit.Pos.Row, lit.Pos.Col).Terminal(lit.Literal)
		if len(s.categories) == 0 {
			continue
		}
		if _, ok := s.categories[lit.Literal]; ok {
			continue
		}
		s.categories[lit.Literal] = struct{}{}
		s.b.Literal(lit.Literal, lit.Literal)
	}

	if len(s.errs) > 0 {
		s.errs.Sort()
		return nil, s.errs
	}
	return s.b, nil
}

func (s *builderState) addErr(cause error, detail string, pos Position) {
	s.errs = append(s.errs, newSpecError(cause, detail, pos))
}

func (s *builderState) directive(dir *DirectiveNode) {
	s.b.At(dir.Pos.Row, dir.Pos.Col)

	if dir.Group != nil && dir.Name != dirTerminal {
		s.addErr(synErrDirGroupNotAllowed, "%"+dir.Name, dir.Pos)
		return
	}

	switch dir.Name {
	case dirName, dirStart:
		id, ok := s.singleID(dir)
		if !ok {
			return
		}
		if dir.Name == dirName {
			if s.named {
				s.addErr(synErrDirDuplicate, "%"+dir.Name, dir.Pos)
				return
			}
			s.named = true
			s.b.Name(id)
			return
		}
		if s.started {
			s.addErr(synErrDirDuplicate, "%"+dir.Name, dir.Pos)
			return
		}
		s.started = true
		s.b.Start(id)
	case dirCategory:
		if len(dir.Parameters) < 2 {
			s.addErr(synErrDirNoParam, "%category needs a name and a pattern", dir.Pos)
			return
		}
		if len(dir.Parameters) > 2 {
			s.addErr(synErrDirTooManyParams, "%category", dir.Parameters[2].Pos)
			return
		}
		name, pat := dir.Parameters[0], dir.Parameters[1]
		if name.ID == "" {
			s.addErr(synErrDirInvalidParam, "a category name must be an identifier", name.Pos)
			return
		}
		s.categories[name.ID] = struct{}{}
		switch {
		case pat.Pattern != "":
			s.b.Category(name.ID, pat.Pattern)
		case pat.Literal != "":
			s.b.Literal(name.ID, pat.Literal)
		default:
			s.addErr(synErrDirInvalidParam, "a category needs a pattern or a literal", pat.Pos)
		}
	case dirSkip:
		cats, ok := s.ids(dir)
		if !ok {
			return
		}
		s.b.Skip(cats...)
	case dirTerminal:
		cats, ok := s.ids(dir)
		if !ok {
			return
		}
		if dir.Group != nil {
			if dir.Group.ID == "" {
				s.addErr(synErrDirInvalidParam, "a terminal name must be an identifier", dir.Group.Pos)
				return
			}
			s.terminals[dir.Group.ID] = struct{}{}
			s.b.Terminal(dir.Group.ID, cats...)
			return
		}
		for _, cat := range cats {
			s.terminals[cat] = struct{}{}
			s.b.Terminal(cat)
		}
	case dirLeft, dirRight:
		if len(dir.Parameters) == 0 {
			s.addErr(synErrDirNoParam, "%"+dir.Name, dir.Pos)
			return
		}
		var syms []string
		for _, param := range dir.Parameters {
			switch {
			case param.ID != "":
				syms = append(syms, param.ID)
			case param.Literal != "":
				s.literals = append(s.literals, &ElementNode{
					Literal: param.Literal,
					Pos:     param.Pos,
				})
				syms = append(syms, param.Literal)
			default:
				s.addErr(synErrDirInvalidParam, "a pattern cannot have precedence", param.Pos)
				return
			}
		}
		if dir.Name == dirLeft {
			s.b.Left(syms...)
		} else {
			s.b.Right(syms...)
		}
	}
}

func (s *builderState) singleID(dir *DirectiveNode) (string, bool) {
	if len(dir.Parameters) == 0 {
		s.addErr(synErrDirNoParam, "%"+dir.Name, dir.Pos)
		return "", false
	}
	if len(dir.Parameters) > 1 {
		s.addErr(synErrDirTooManyParams, "%"+dir.Name, dir.Parameters[1].Pos)
		return "", false
	}
	param := dir.Parameters[0]
	if param.ID == "" {
		s.addErr(synErrDirInvalidParam, "%"+dir.Name+" needs an identifier", param.Pos)
		return "", false
	}
	return param.ID, true
}

func (s *builderState) ids(dir *DirectiveNode) ([]string, bool) {
	if len(dir.Parameters) == 0 {
		s.addErr(synErrDirNoParam, "%"+dir.Name, dir.Pos)
		return nil, false
	}
	ids := make([]string, 0, len(dir.Parameters))
	for _, param := range dir.Parameters {
		if param.ID == "" {
			s.addErr(synErrDirInvalidParam, "%"+dir.Name+" takes only identifiers", param.Pos)
			return nil, false
		}
		ids = append(ids, param.ID)
	}
	return ids, true
}
