package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fuclang/lrgen/grammar"
	spec "github.com/fuclang/lrgen/spec/grammar"
	"github.com/fuclang/lrgen/tester"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	class *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test a grammar",
		Example: `  lrgen test grammar.lrg test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.class = cmd.Flags().String("class", string(spec.ClassLR1), "table class [lr1|lalr1|slr1]")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	class, err := spec.ParseClass(*testFlags.class)
	if err != nil {
		return err
	}
	g, err := readGrammar(args[0], formatDescription, "")
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	cg, _, err := grammar.Compile(g, grammar.SpecifyClass(class))
	if err != nil {
		return fmt.Errorf("Cannot compile a grammar: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Grammar: cg,
		Cases:   cs,
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if !r.Passed() {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
