package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	spec "github.com/fuclang/lrgen/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	terminals *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show <report file path>",
		Short:   "Print a report in a readable format",
		Example: `  lrgen show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	showFlags.terminals = cmd.Flags().Bool("terminals", false, "print only the terminals as a table")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	if *showFlags.terminals {
		pterm.DefaultTable.WithHasHeader().WithData(terminalTable(report)).Render()
		return nil
	}

	return writeReport(os.Stdout, report)
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	return spec.ReadReport(f)
}

func terminalTable(report *spec.Report) pterm.TableData {
	data := pterm.TableData{
		{"#", "Name", "Prec", "Assoc", "Categories"},
	}
	for _, term := range report.Terminals {
		if term == nil {
			continue
		}
		prec := "-"
		if term.Precedence != 0 {
			prec = strconv.Itoa(term.Precedence)
		}
		data = append(data, []string{
			strconv.Itoa(term.Number),
			term.Name,
			prec,
			assocName(term.Associativity),
			strings.Join(term.Categories, " "),
		})
	}
	return data
}

func assocName(assoc string) string {
	switch assoc {
	case "l":
		return "left"
	case "r":
		return "right"
	default:
		return "-"
	}
}

const reportTemplate = `# {{ .Name }} ({{ .Class }})

# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range slice .Productions 1 -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ if .Accept -}}
accept on <eof>
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .Conflicts -}}
{{ printConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	termName := func(sym int) string {
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	symbols := func(b *strings.Builder, rhs []int, dot int) {
		for i, e := range rhs {
			if i == dot {
				fmt.Fprintf(b, " ・")
			}
			if e > 0 {
				fmt.Fprintf(b, " %v", termName(e))
			} else {
				fmt.Fprintf(b, " %v", nonTermName(e*-1))
			}
		}
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			var count int
			for _, s := range report.States {
				count += len(s.Conflicts)
			}
			switch count {
			case 0:
				return "No conflict"
			case 1:
				return "1 conflict occurred and resolved by precedence."
			}
			return fmt.Sprintf("%v conflicts occurred and resolved by precedence.", count)
		},
		"printTerminal": func(term *spec.Terminal) string {
			var prec string
			if term.Precedence != 0 {
				prec = fmt.Sprintf("%2v", term.Precedence)
			} else {
				prec = " -"
			}

			assoc := term.Associativity
			if assoc == "" {
				assoc = "-"
			}

			if len(term.Categories) > 1 || (len(term.Categories) == 1 && term.Categories[0] != term.Name) {
				return fmt.Sprintf("%4v %v %v %v (%v)", term.Number, prec, assoc, term.Name, strings.Join(term.Categories, " "))
			}
			return fmt.Sprintf("%4v %v %v %v", term.Number, prec, assoc, term.Name)
		},
		"printProduction": func(prod *spec.Production) string {
			var prec string
			if prod.Precedence != 0 {
				prec = fmt.Sprintf("%2v", prod.Precedence)
			} else {
				prec = " -"
			}

			assoc := prod.Associativity
			if assoc == "" {
				assoc = "-"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			if len(prod.RHS) > 0 {
				symbols(&b, prod.RHS, -1)
			} else {
				fmt.Fprintf(&b, " ε")
			}
			if prod.Label != "" {
				fmt.Fprintf(&b, " @%v", prod.Label)
			}

			return fmt.Sprintf("%4v %v %v %v", prod.Number, prec, assoc, b.String())
		},
		"printItem": func(item *spec.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			symbols(&b, prod.RHS, item.Dot)
			if item.Dot >= len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}
			if len(item.LookAhead) > 0 {
				las := make([]string, len(item.LookAhead))
				for i, a := range item.LookAhead {
					las[i] = termName(a)
				}
				fmt.Fprintf(&b, " [%v]", strings.Join(las, ", "))
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *spec.Reduce) string {
			las := make([]string, len(reduce.LookAhead))
			for i, a := range reduce.LookAhead {
				las[i] = termName(a)
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, strings.Join(las, ", "))
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printConflict": func(c *spec.Conflict) string {
			var adopted string
			switch {
			case c.AdoptedState != nil:
				adopted = fmt.Sprintf("shift %v", *c.AdoptedState)
			case c.AdoptedProduction != nil:
				adopted = fmt.Sprintf("reduce %v", *c.AdoptedProduction)
			default:
				adopted = "error"
			}
			prods := make([]string, len(c.Productions))
			for i, p := range c.Productions {
				prods[i] = strconv.Itoa(p)
			}
			if c.Kind == spec.ConflictKindShiftReduce {
				return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: %v adopted by %v", c.NextState, strings.Join(prods, ", "), termName(c.Symbol), adopted, c.ResolvedBy)
			}
			return fmt.Sprintf("%v conflict (reduce %v) on %v: %v adopted by %v", c.Kind, strings.Join(prods, ", "), termName(c.Symbol), adopted, c.ResolvedBy)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, report)
}
