package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoGrammarName       = newSemanticError("name is missing")
	semErrNoStartSymbol       = newSemanticError("start symbol is missing")
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrNoStartProduction   = newSemanticError("the start symbol has no production")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrUnreachableNonTerm  = newSemanticError("unreachable non-terminal")
	semErrDuplicateTerminal   = newSemanticError("duplicate terminal")
	semErrDuplicateCategory   = newSemanticError("a category is assigned to more than one terminal")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrDuplicatePrec       = newSemanticError("precedence of a terminal is declared more than once")
	semErrUndefinedCategory   = newSemanticError("category has no pattern")
	semErrDuplicateCatPattern = newSemanticError("a pattern of a category is declared more than once")
	semErrInvalidCatPattern   = newSemanticError("invalid category pattern")
	semErrPrecOfNonTerminal   = newSemanticError("precedence can be declared only for terminals")
	semErrNoPrecOfPrecSym     = newSemanticError("%prec refers to a terminal without precedence")
	semErrSkipSyntacticCat    = newSemanticError("a category used by a terminal cannot be skipped")
	semErrTooManySymbols      = newSemanticError("too many symbols")
	semErrReservedName        = newSemanticError("the name is reserved")
	semErrUnusedTerminal      = newSemanticError("unused terminal")
)
