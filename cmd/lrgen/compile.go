package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	verr "github.com/fuclang/lrgen/error"
	"github.com/fuclang/lrgen/grammar"
	spec "github.com/fuclang/lrgen/spec/grammar"
	gparser "github.com/fuclang/lrgen/spec/grammar/parser"
	"github.com/spf13/cobra"
)

const (
	formatDescription = "lrg"
	formatEBNF        = "ebnf"
)

var compileFlags = struct {
	output   *string
	format   *string
	start    *string
	class    *string
	encoding *string
	report   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "compile [<grammar file path>]",
		Short: "Compile a grammar into a parsing table",
		Example: `  lrgen compile grammar.lrg -o grammar.json
  lrgen compile --format ebnf --start Expr expr.ebnf --class lalr1`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.format = cmd.Flags().String("format", formatDescription, "grammar format [lrg|ebnf]")
	compileFlags.start = cmd.Flags().String("start", "", "start production of an EBNF grammar")
	compileFlags.class = cmd.Flags().String("class", string(spec.ClassLR1), "table class [lr1|lalr1|slr1]")
	compileFlags.encoding = cmd.Flags().String("encoding", string(spec.TableEncodingRowDisplacement), "table encoding [plain|unique_rows|row_displacement]")
	compileFlags.report = cmd.Flags().Bool("report", false, "write a report next to the compiled grammar")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverError(&retErr)

	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	class, err := spec.ParseClass(*compileFlags.class)
	if err != nil {
		return err
	}
	encoding, err := parseEncoding(*compileFlags.encoding)
	if err != nil {
		return err
	}

	gram, err := readGrammar(grmPath, *compileFlags.format, *compileFlags.start)
	if err != nil {
		return err
	}

	opts := []grammar.CompileOption{
		grammar.SpecifyClass(class),
		grammar.EncodeTables(encoding),
	}
	if *compileFlags.report {
		opts = append(opts, grammar.EnableReporting())
	}
	cgram, report, err := grammar.Compile(gram, opts...)
	if err != nil {
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	if report != nil {
		var resolvedCount int
		for _, s := range report.States {
			resolvedCount += len(s.Conflicts)
		}
		if resolvedCount > 0 {
			fmt.Fprintf(os.Stderr, "%v conflicts resolved by precedence\n", resolvedCount)
		}
	}

	return nil
}

func parseEncoding(s string) (spec.TableEncoding, error) {
	switch e := spec.TableEncoding(s); e {
	case spec.TableEncodingPlain, spec.TableEncodingUniqueRows, spec.TableEncodingRowDisplacement:
		return e, nil
	}
	return "", fmt.Errorf("unknown table encoding: %v (plain, unique_rows or row_displacement is available)", s)
}

// readGrammar reads a grammar in a format. An empty path means stdin.
func readGrammar(path string, format string, start string) (grm *grammar.Grammar, retErr error) {
	sourceName := path
	src := io.Reader(os.Stdin)
	if path == "" {
		sourceName = "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}
	defer func() {
		if specErrs, ok := retErr.(verr.SpecErrors); ok {
			specErrs.SetSource(path, sourceName)
		}
	}()

	switch format {
	case formatDescription:
		return gparser.Load(src)
	case formatEBNF:
		if start == "" {
			return nil, fmt.Errorf("an EBNF grammar needs --start")
		}
		name := filepath.Base(path)
		if path == "" {
			name = "stdin"
		}
		name = name[:len(name)-len(filepath.Ext(name))]
		return gparser.LoadEBNF(name, start, src)
	}
	return nil, fmt.Errorf("unknown grammar format: %v (lrg or ebnf is available)", format)
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-existent path, this function assumes that the path represents a
//     file path for the compiled grammar. Then it writes the report in the same directory as the compiled
//     grammar.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
//
// A nil report is not written.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		err := spec.WriteCompiledGrammar(cgramW, cgram)
		if err != nil {
			return err
		}
		fmt.Fprintln(cgramW)
	}

	if report != nil {
		reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		err = spec.WriteReport(reportFile, report)
		if err != nil {
			return err
		}
	}

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}
