package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pborges/pcalc/internal/formulafile"
	"github.com/pborges/pcalc/internal/pcalc"
	"github.com/pborges/pcalc/internal/style"
	"github.com/spf13/cobra"
)

func newDepsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deps FILE",
		Short: "Show the dependency map and evaluation order of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := formulafile.Load(args[0])
			if err != nil {
				return err
			}
			sr := pcalc.Sort(fs)
			for _, c := range sr.Cycles {
				style.PrintWarning(cmd.ErrOrStderr(), "%v", c)
			}
			renderDeps(cmd.OutOrStdout(), sr)
			return nil
		},
	}
}

func renderDeps(w io.Writer, sr pcalc.SortResult) {
	names := make([]string, 0, len(sr.Dependencies))
	for name := range sr.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, style.Bold.Render("Dependencies"))
	for _, name := range names {
		deps := "-"
		if d := sr.Dependencies[name]; len(d) > 0 {
			deps = strings.Join(d, ", ")
		}
		fmt.Fprintf(w, "  %s: %s\n", style.Info.Render(name), deps)
	}

	fmt.Fprintln(w, style.Bold.Render("Order"))
	for _, f := range sr.Formulas {
		fmt.Fprintf(w, "  %s  %s  %s\n", style.Dim.Render(fmt.Sprintf("%4d", f.Height)), style.Info.Render(f.ID), f.Text)
	}
}
