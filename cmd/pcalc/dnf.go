package main

import (
	"fmt"
	"strings"

	"github.com/pborges/pcalc/internal/logic"
	"github.com/pborges/pcalc/internal/pcalc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newDNFCmd(o *options) *cobra.Command {
	var minimize bool
	cmd := &cobra.Command{
		Use:   "dnf EXPR",
		Short: "Print the disjunctive normal form of a logic expression",
		Long: `Print the disjunctive normal form of a logic expression such as
"Wet and not (Rain or Sprinkler)". A conditional "X given Y" prints as the
quotient of its joint and its condition. [] is the empty disjunction.

With --minimize the normal form is further reduced to a short sum of
products; conditionals cannot be minimized.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pcalc.ParseLogic(strings.Join(args, " "))
			if err != nil {
				return err
			}
			n := logic.Normalizer{MaxPasses: o.cfg.Limits.MaxDNFPasses}
			out, converged := n.Normalize(t)
			if !converged {
				log.WithField("passes", n.MaxPasses).Warn("DNF did not converge, showing last pass")
			}
			if minimize {
				if out, err = logic.Minimize(out); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&minimize, "minimize", "m", false, "reduce the normal form with prime implicants")
	return cmd
}
