package main

import (
	"fmt"
	"os"

	buildinfo "github.com/pborges/pcalc"
	"github.com/pborges/pcalc/internal/config"
	"github.com/pborges/pcalc/internal/pcalc"
	"github.com/pborges/pcalc/internal/style"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		style.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the global flags and the configuration they resolve to.
type options struct {
	configPath        string
	debug             bool
	maxDNFPasses      int
	maxDependencyVars int
	maxNetworkVars    int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "pcalc",
		Short: "pcalc evaluates probability formulas",
		Long: `pcalc interprets formulas that define and query a network of
binary random variables.

    $ pcalc eval "pr Rain = 20%" "pr Wet given Rain = .8" "%pr Wet?"
    $ pcalc batch lawn.yaml --output results.yaml --format yaml`,
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.resolve(cmd)
		},
	}

	o.addFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newEvalCmd(o),
		newBatchCmd(o),
		newDepsCmd(o),
		newDNFCmd(o),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *options) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.configPath, "config", "", "TOML settings file")
	flags.BoolVar(&o.debug, "debug", false, "enable debug logging")
	flags.IntVar(&o.maxDNFPasses, "max-dnf-passes", 0, "cap on DNF rewrite passes")
	flags.IntVar(&o.maxDependencyVars, "max-dependency-vars", 0, "cap on the parents of one variable")
	flags.IntVar(&o.maxNetworkVars, "max-network-vars", 0, "cap on the variables of one network")
}

// resolve loads the settings file, applies flag overrides and configures
// logging and styling.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("max-dnf-passes") {
		cfg.Limits.MaxDNFPasses = o.maxDNFPasses
	}
	if flags.Changed("max-dependency-vars") {
		cfg.Limits.MaxDependencyVars = o.maxDependencyVars
	}
	if flags.Changed("max-network-vars") {
		cfg.Limits.MaxNetworkVars = o.maxNetworkVars
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	log.SetOutput(cmd.ErrOrStderr())
	if err := cfg.ConfigureLogger(log.StandardLogger()); err != nil {
		return err
	}
	if o.debug {
		log.SetLevel(log.DebugLevel)
	}
	style.Init(os.Stdout)

	o.cfg = cfg
	log.WithField("limits", cfg.PcalcLimits()).Debug("configuration loaded")
	return nil
}

func (o *options) newSession(logger log.FieldLogger) *pcalc.Session {
	return pcalc.NewSession(
		pcalc.WithLogger(logger),
		pcalc.WithLimits(o.cfg.PcalcLimits()),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Banner())
		},
	}
}
