package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sigil/internal/core"
	"sigil/internal/diag"
	"sigil/internal/names"
)

var dumpFull bool

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the initialized symbol table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bag := diag.NewBag(cfg.MaxDiagnostics)
		gs := core.NewGlobalState(cfg, &diag.BagReporter{Bag: bag, Suppress: cfg.Suppressions()})

		colored := useColor(cmd, os.Stdout)
		classColor := color.New(color.FgCyan)
		seen := map[core.SymbolRef]bool{core.SymRoot: true}
		dumpSymbol(gs, core.SymRoot, 0, colored, classColor, seen)
		fmt.Printf("%d symbols\n", gs.SymbolCount())
		return nil
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpFull, "full", false, "include synthetic members")
}

func dumpSymbol(gs *core.GlobalState, ref core.SymbolRef, depth int, colored bool, classColor *color.Color, seen map[core.SymbolRef]bool) {
	for _, entry := range gs.MembersStableOrderSlow(ref) {
		if entry.Name == names.AttachedClass {
			continue
		}
		sym := gs.Symbol(entry.Sym)
		if !dumpFull && (sym.IsDSLSynthesized() || gs.Names.Kind(entry.Name) != names.UTF8) {
			continue
		}
		if seen[entry.Sym] {
			continue
		}
		seen[entry.Sym] = true
		name := gs.Names.Value(entry.Name)
		label := kindLabel(sym)
		for i := 0; i < depth; i++ {
			fmt.Print("  ")
		}
		if colored && sym.IsClass() {
			fmt.Printf("%s %s", label, classColor.Sprint(name))
		} else {
			fmt.Printf("%s %s", label, name)
		}
		if sym.ResultType.Exists() {
			fmt.Printf(" -> %s", gs.ShowType(sym.ResultType))
		}
		fmt.Println()
		if sym.IsClass() {
			dumpSymbol(gs, entry.Sym, depth+1, colored, classColor, seen)
		}
	}
}

func kindLabel(sym *core.Symbol) string {
	switch {
	case sym.IsClass():
		return "class"
	case sym.IsMethod():
		return "def"
	case sym.IsField():
		return "field"
	case sym.IsStaticField():
		return "const"
	case sym.IsTypeMember():
		return "type-member"
	default:
		return "type-arg"
	}
}
