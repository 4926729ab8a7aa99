package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
}{}

// traceKeys are the tracing keys of the packages the commands drive.
var traceKeys = []string{
	"lrgen.grammar",
	"lrgen.spec",
	"lrgen.parser",
	"lrgen.tester",
	"lrgen.fuc",
}

var rootCmd = &cobra.Command{
	Use:   "lrgen",
	Short: "Generate an LR parsing table from a grammar",
	Long: `lrgen provides the following features:
- Generates a canonical LR(1), LALR(1) or SLR(1) parsing table from a grammar.
- Parses a text stream with a generated table and prints its syntax tree.
- Tests a grammar against test cases and explores it interactively.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// recoverError turns a panic into an error and prints the stack trace. Call it deferred with the named
// error result of a command.
func recoverError(retErr *error) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("an unexpected error occurred: %v", v)
	}
	fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
	*retErr = err
}
