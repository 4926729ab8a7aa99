/*
Package grammar builds LR parsing tables from context-free grammars.

A Grammar is assembled with a Builder and compiled into a parsing table by Compile. Three table classes are
supported: canonical LR(1), LALR(1) and SLR(1). Canonical LR(1) is the default. Conflicts that cannot be
resolved with precedence and associativity declarations fail a compilation.

Tracing uses the key 'lrgen.grammar'.
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.grammar")
}
