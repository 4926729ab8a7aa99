package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fuclang/lrgen/driver/parser"
	spec "github.com/fuclang/lrgen/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl <compiled grammar file path>",
		Short: "Parse lines interactively and print their syntax trees",
		Long: `repl reads a line at a time and prints its syntax tree. Lines starting with ':' are commands:
  :tokens  toggles printing the terminals instead of the tree
  :labels  prints the production labels of the grammar
  :quit    quits (so does <ctrl>D)`,
		Example: `  lrgen repl grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runREPL,
	}
	rootCmd.AddCommand(cmd)
}

// repl is an interactive session with one compiled grammar.
type repl struct {
	cgram  *spec.CompiledGrammar
	rl     *readline.Instance
	tokens bool
}

func runREPL(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverError(&retErr)

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	initDisplay()
	rl, err := readline.New(cgram.Name + "> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	r := &repl{
		cgram: cgram,
		rl:    rl,
	}
	pterm.Info.Println(fmt.Sprintf("grammar %v (%v, %v states)", cgram.Name, cgram.Class, cgram.ParsingTable.StateCount))
	pterm.Info.Println("Quit with <ctrl>D or :quit")
	r.loop()
	return nil
}

// initDisplay sets up the prefixes of pterm's printers.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func (r *repl) loop() {
	for {
		line, err := r.rl.Readline()
		if err != nil { // io.EOF or an interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := r.eval(line); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// eval runs a command or parses a line. It reports whether the session ends.
func (r *repl) eval(line string) bool {
	switch line {
	case ":quit":
		return true
	case ":tokens":
		r.tokens = !r.tokens
		pterm.Info.Println(fmt.Sprintf("printing terminals: %v", r.tokens))
		return false
	case ":labels":
		labels := parser.Labels(parser.NewGrammar(r.cgram))
		if len(labels) == 0 {
			pterm.Info.Println("no labels")
			return false
		}
		pterm.Info.Println(strings.Join(labels, " "))
		return false
	}
	if strings.HasPrefix(line, ":") {
		pterm.Error.Println(fmt.Sprintf("unknown command: %v", line))
		return false
	}

	tree, err := parseSource(r.cgram, strings.NewReader(line))
	if err != nil {
		pterm.Error.Println(err.Error())
		return false
	}
	if r.tokens {
		for _, leaf := range tree.Leaves() {
			pterm.Println(leafText(leaf))
		}
		return false
	}
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(leveledTree(tree, pterm.LeveledList{}, 0))).Render()
	return false
}

// leveledTree flattens a syntax tree in pre-order, which is the form pterm builds a tree from.
func leveledTree(node *parser.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	if node == nil {
		return ll
	}
	var text string
	switch {
	case len(node.Children) == 0 && node.Text != "":
		text = leafText(node)
	case node.Label != "":
		text = fmt.Sprintf("%v @%v", node.KindName, node.Label)
	default:
		text = node.KindName
	}
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  text,
	})
	for _, c := range node.Children {
		ll = leveledTree(c, ll, level+1)
	}
	return ll
}

func leafText(n *parser.Node) string {
	return fmt.Sprintf("%v %#v", n.KindName, n.Text)
}
