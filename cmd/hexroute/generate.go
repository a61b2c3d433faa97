package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hexroute/internal/config"
)

func newGenerateCommand() *cobra.Command {
	var (
		seed   int64
		radius int
		width  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a world and replace the saved one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("radius") {
				cfg.Radius = radius
			}
			if cmd.Flags().Changed("wrap-width") {
				cfg.WrapWidth = width
			}

			db, err := openDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := generateWorld(db, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s hexes to %s\n", humanize.Comma(int64(m.HexCount())), cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "Noise seed (overrides HEXROUTE_SEED)")
	cmd.Flags().IntVar(&radius, "radius", 0, "Island radius (overrides HEXROUTE_RADIUS)")
	cmd.Flags().IntVar(&width, "wrap-width", 0, "Columns of a horizontally wrapping world, 0 for an island")
	return cmd
}
