package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pborges/pcalc/internal/pcalc"
	"github.com/pborges/pcalc/internal/report"
	"github.com/pborges/pcalc/internal/style"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newEvalCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval FORMULA...",
		Short: "Evaluate formulas as one session",
		Long: `Evaluate the arguments as one batch. Assignments run first in
dependency order, whatever their position; results are printed in argument
order with ids f1..fn.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := make([]pcalc.Formula, len(args))
			for i, a := range args {
				fs[i] = pcalc.Formula{ID: fmt.Sprintf("f%d", i+1), Text: a}
			}
			res, err := o.newSession(log.StandardLogger()).Run(fs)
			if err != nil {
				return err
			}
			renderResults(cmd.OutOrStdout(), res)
			if n := res.Failed(); n > 0 {
				return errors.Errorf("%d of %d formulas failed", n, len(fs))
			}
			return nil
		},
	}
}

// renderResults prints one styled line per result.
func renderResults(w io.Writer, res *pcalc.Results) {
	width := 0
	for _, r := range res.Items {
		if len(r.ID) > width {
			width = len(r.ID)
		}
	}
	for _, r := range res.Items {
		id := style.Info.Render(r.ID + strings.Repeat(" ", width-len(r.ID)))
		if r.Err != nil {
			fmt.Fprintf(w, "%s  %s\n", id, style.Error.Render("error: "+r.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "%s  %s  %s\n", id, style.Success.Render(report.FormatValue(r.Value)), style.Dim.Render(r.Text))
	}
}
