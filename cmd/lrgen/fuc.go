package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fuclang/lrgen/lang/fuc"
	"github.com/spf13/cobra"
)

var fucFlags = struct {
	grammar *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "fuc [<source file path>]",
		Short: "Parse a fuc program and print its AST",
		Example: `  lrgen fuc program.fuc
  lrgen fuc --grammar > fuc.lrg`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFuc,
	}
	fucFlags.grammar = cmd.Flags().Bool("grammar", false, "print the grammar description of fuc")
	rootCmd.AddCommand(cmd)
}

func runFuc(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverError(&retErr)

	if *fucFlags.grammar {
		_, err := os.Stdout.Write(fuc.Description())
		return err
	}

	src := io.Reader(os.Stdin)
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", args[0], err)
		}
		defer f.Close()
		src = f
	}

	prog, err := fuc.Parse(src)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, prog)
	return nil
}
