/*aurora computes ion fraction histories, makes sight lines, and draws maps of
Aurora simulation snapshots.

	aurora history [--plot out.png] [--store name] snapdir_010 snapdir_011 ...
	aurora rays [--batch n] snapdir_012
	aurora plot --kind slice --out slice.png snapdir_012

Parameters come from the file given with --config, then TOPAZ_* environment
variables. See config.Config for the full list.*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abatten/TOPAZ/config"
	"github.com/abatten/TOPAZ/logging"
)

// app holds what every subcommand needs once the root command has run.
type app struct {
	configPath string
	debug      bool
	quiet      bool

	cfg *config.Config
	log *zap.SugaredLogger
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil { return err }
	if a.debug { cfg.Debug = true }
	if a.quiet { cfg.Quiet = true }

	log, err := logging.New(cfg.Logging())
	if err != nil { return err }

	a.cfg, a.log = cfg, log
	a.log.Debugw("Loaded configuration", "path", a.configPath,
		"ion", cfg.Ion, "weighting", cfg.Weighting)
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "aurora",
		Short:             "Ionization statistics and sight lines for Aurora snapshots",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "TOML configuration file")
	flags.BoolVar(&a.debug, "debug", false, "verbose development logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "disable logging")

	root.AddCommand(newHistoryCommand(a), newRaysCommand(a), newPlotCommand(a))
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
