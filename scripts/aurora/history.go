package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abatten/TOPAZ/history"
	"github.com/abatten/TOPAZ/render"
	"github.com/abatten/TOPAZ/stats"
)

func newHistoryCommand(a *app) *cobra.Command {
	var plotFile, name string
	var fromStore, halfLine bool

	cmd := &cobra.Command{
		Use:   "history [snapshot dirs...]",
		Short: "Weighted mean ion fraction for each snapshot",
		Long: `history computes the weighted mean fraction of the configured ion in
every snapshot, in the order given. Snapshots default to the "snapshots" list
in the configuration. With a history database configured, the series is
stored under --store, and --from-store redraws a stored series without
reading any snapshots.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil { ctx = context.Background() }

			cfg := a.cfg
			paths := args
			if len(paths) == 0 { paths = cfg.Snapshots }
			if name == "" {
				name = fmt.Sprintf("%s_%s", cfg.Ion, cfg.WeightingMode())
			}

			var store *history.Store
			if cfg.History != "" {
				var err error
				if store, err = history.Open(cfg.History); err != nil { return err }
				defer store.Close()
			}

			var ts *stats.TimeSeries
			var err error
			switch {
			case fromStore && store == nil:
				return fmt.Errorf("--from-store needs a history database in the configuration")
			case fromStore:
				if ts, err = store.Get(ctx, name); err != nil { return err }
			case len(paths) == 0:
				return render.ErrNoHistory
			default:
				ts, err = stats.IonMean(paths, cfg.Ion, cfg.WeightingMode(),
					stats.WithFormat(cfg.SnapshotFormat), stats.WithLogger(a.log))
				if err != nil { return err }

				if store != nil {
					run, err := store.Put(ctx, name, ts)
					if err != nil { return err }
					a.log.Infow("Stored history", "name", name, "run", run.String(),
						"db", cfg.History)
				}
			}

			printSeries(ts)

			if plotFile != "" {
				p, err := render.IonHistory(ts, paths, cfg.Ion, cfg.WeightingMode(),
					render.WithLogger(a.log), render.WithHalfLine(halfLine))
				if err != nil { return err }
				if err := render.Save(p, plotFile, 0, 0); err != nil { return err }
				a.log.Infow("Saved plot", "path", plotFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&plotFile, "plot", "", "also plot the history to this file")
	cmd.Flags().StringVar(&name, "store", "", "name of the stored series (default <ion>_<weighting>)")
	cmd.Flags().BoolVar(&halfLine, "half-line", false, "mark the 50% level on the plot")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "read the series from the history database")
	return cmd
}

func printSeries(ts *stats.TimeSeries) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "redshift\t%s (%s)\n", ts.Ion, ts.Weighting)
	for i := range ts.Redshift {
		fmt.Fprintf(w, "%.4f\t%.6g\n", ts.Redshift[i], ts.Value[i])
	}
	w.Flush()
}
