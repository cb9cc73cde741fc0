package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/abatten/TOPAZ/io/snapshot"
	"github.com/abatten/TOPAZ/render"
)

func newPlotCommand(a *app) *cobra.Command {
	var kind, out, metal string
	var lgadget2 bool

	cmd := &cobra.Command{
		Use:   "plot <snapshot dir>",
		Short: "Draw a density slice, density projection or metallicity map",
		Long: `plot draws one map of a snapshot looking down the configured axis.
Slices are centered on slice_center and slice_thickness (both in units of the
box size). Metallicity maps show [X/H] for the element given by --metal, or
the total metallicity relative to solar without it. --lgadget2 reads a
directory of LGadget-2 dark matter files instead of a Gadget HDF5 snapshot;
those only support slices and projections.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg

			var snap snapshot.Snapshot
			var err error
			if lgadget2 {
				snap, err = snapshot.LGadget2(args[0])
			} else {
				snap, err = snapshot.Open(args[0], cfg.SnapshotFormat)
			}
			if err != nil { return err }
			defer snap.Close()

			opts := []render.Option{
				render.WithLogger(a.log), render.WithColors(cfg.Colors),
			}
			L := snap.Header().L

			var p *plot.Plot
			switch kind {
			case "slice":
				p, err = render.DensitySlice(snap, cfg.RayAxis(),
					cfg.SliceCenter*L, cfg.SliceThickness*L, cfg.Pixels, opts...)
			case "projection":
				p, err = render.DensityProjection(snap, cfg.RayAxis(),
					cfg.Pixels, opts...)
			case "metallicity":
				p, err = render.MetallicityMap(snap, cfg.RayAxis(), metal,
					cfg.Pixels, opts...)
			default:
				return fmt.Errorf("unknown plot kind '%s': must be slice, "+
					"projection or metallicity", kind)
			}
			if err != nil { return err }

			if out == "" { out = kind + ".png" }
			if err := render.Save(p, out, 0, 0); err != nil { return err }
			a.log.Infow("Saved plot", "kind", kind, "path", out, "z", snap.Header().Z)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "projection", "slice, projection or metallicity")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image (default <kind>.png)")
	cmd.Flags().StringVar(&metal, "metal", "", "element for metallicity maps, e.g. O or Fe")
	cmd.Flags().BoolVar(&lgadget2, "lgadget2", false, "read LGadget-2 files")
	return cmd
}
