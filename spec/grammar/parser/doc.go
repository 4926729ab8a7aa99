/*
Package parser reads grammar descriptions.

Two formats are accepted. The description format declares a grammar with directives and productions:

	%name expr;
	%start expr;
	%category NUM "[0-9]+";
	%category PLUS '+';
	%skip WS;
	%terminal NUM PLUS;
	%left PLUS;

	expr
	    : expr PLUS expr @add
	    | NUM
	    ;

An EBNF grammar in the notation of golang.org/x/exp/ebnf is also accepted as long as it stays within BNF.

Tracing uses the key 'lrgen.spec'.
*/
package parser

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.spec'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.spec")
}
