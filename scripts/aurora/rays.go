package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatten/TOPAZ/io/snapshot"
	"github.com/abatten/TOPAZ/ray"
)

func newRaysCommand(a *app) *cobra.Command {
	var start, end []float64
	var inspect string
	var n int

	cmd := &cobra.Command{
		Use:   "rays <snapshot dir>",
		Short: "Write random sight lines through a snapshot",
		Long: `rays writes batch_size random rays parallel to the configured axis,
each crossing the whole box. With --start and --end a single ray between the
two points is written to ray_filename instead. --inspect prints the column
densities stored in an existing ray file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if inspect != "" { return cobra.NoArgs(cmd, args) }
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspect != "" { return inspectRay(inspect) }

			cfg := a.cfg
			snap, err := snapshot.Open(args[0], cfg.SnapshotFormat)
			if err != nil { return err }
			defer snap.Close()

			seed := cfg.Seed
			if seed == 0 { seed = time.Now().UnixNano() }
			gen := &ray.Generator{
				Tracer:    &ray.SampleTracer{ Samples: cfg.Samples },
				Rand:      rand.New(rand.NewSource(seed)),
				Log:       a.log,
				OutputDir: cfg.OutputDir,
				Prefix:    cfg.RayPrefix,
			}
			opts := ray.Options{ ReturnRay: cfg.ReturnRay }

			if len(start) > 0 || len(end) > 0 {
				x0, err := vec(start, "start")
				if err != nil { return err }
				x1, err := vec(end, "end")
				if err != nil { return err }

				fname := filepath.Join(cfg.OutputDir, cfg.RayFilename)
				r, err := gen.Make(snap, x0, x1, cfg.Lines, fname, opts)
				if err != nil { return err }
				if r != nil { printColumns(r) }
				fmt.Println(fname)
				return nil
			}

			if !cmd.Flags().Changed("batch") { n = cfg.BatchSize }
			a.log.Infow("Making rays", "seed", seed, "snapshot", args[0])
			paths, err := gen.Batch(snap, n, cfg.RayAxis(), cfg.Lines, opts)
			if err != nil { return err }
			for _, path := range paths { fmt.Println(path) }
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&start, "start", nil, "start of a single ray: x,y,z in code units")
	cmd.Flags().Float64SliceVar(&end, "end", nil, "end of a single ray: x,y,z in code units")
	cmd.Flags().IntVarP(&n, "batch", "n", 0, "number of random rays (default batch_size)")
	cmd.Flags().StringVar(&inspect, "inspect", "", "print the contents of a ray file")
	return cmd
}

func vec(xs []float64, name string) ([3]float64, error) {
	var v [3]float64
	if len(xs) != 3 {
		return v, fmt.Errorf("--%s needs three components, got %d", name, len(xs))
	}
	copy(v[:], xs)
	return v, nil
}

func inspectRay(fname string) error {
	r, err := ray.ReadRay(fname)
	if err != nil { return err }

	fmt.Printf("%s: z = %.3f, box = %g\n", fname, r.Redshift, r.BoxSize)
	fmt.Printf("start = %v, end = %v, %d samples\n", r.Start, r.End, len(r.L))
	printColumns(r)
	return nil
}

func printColumns(r *ray.Ray) {
	lines := append([]string{}, r.Lines...)
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Printf("  N(%s) = %.4g cm^-2\n", line, r.Column[line])
	}
}
