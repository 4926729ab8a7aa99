package parser

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	// lexical errors
	synErrInvalidToken      = newSyntaxError("invalid token")
	synErrUnclosedPattern   = newSyntaxError("unclosed pattern")
	synErrUnclosedLiteral   = newSyntaxError("unclosed literal")
	synErrInvalidEscSeq     = newSyntaxError("invalid escape sequence; only \\' and \\\\ are allowed in a literal")
	synErrEmptyPattern      = newSyntaxError("a pattern must include at least one character")
	synErrEmptyLiteral      = newSyntaxError("a literal must include at least one character")
	synErrUnknownDirective  = newSyntaxError("unknown directive")
	synErrPrecOutOfPosition = newSyntaxError("%prec can appear only at the end of an alternative")

	// syntax errors
	synErrNoProductionName       = newSyntaxError("a production name is missing")
	synErrNoColon                = newSyntaxError("the colon must precede alternatives")
	synErrNoSemicolon            = newSyntaxError("the semicolon is missing at the last of an alternative")
	synErrTopLevelDirNoSemicolon = newSyntaxError("a top-level directive must be followed by ;")
	synErrNoLabel                = newSyntaxError("an identifier that represents a label is missing after the label marker @")
	synErrNoPrecSymbol           = newSyntaxError("%prec needs a terminal symbol")
	synErrPatternInAlt           = newSyntaxError("a pattern cannot appear directly in an alternative. instead, declare a category with the pattern")
	synErrDirGroupNoParam        = newSyntaxError("a terminal group needs at least one category")

	// directive errors
	synErrDirInvalidParam    = newSyntaxError("invalid directive parameter")
	synErrDirDuplicate       = newSyntaxError("the directive can appear only once")
	synErrDirNoParam         = newSyntaxError("the directive needs a parameter")
	synErrDirTooManyParams   = newSyntaxError("too many directive parameters")
	synErrDirGroupNotAllowed = newSyntaxError("only %terminal can declare a terminal group")
)
