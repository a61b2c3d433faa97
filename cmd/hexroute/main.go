// Command hexroute generates hex worlds, plans routes across them, and serves
// route planning over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/hexroute/internal/config"
	"github.com/talgya/hexroute/internal/persistence"
	"github.com/talgya/hexroute/internal/world"
)

var verbose bool

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hexroute",
		Short: "Hex-grid route planning",
		Long: `hexroute plans least-cost routes over a hex world with terrain and
feature movement costs.

Examples:
  hexroute generate --seed 7 --radius 30
  hexroute route --from 0,0 --to 12,-4 --speed 1.5
  hexroute route --local --from -3,2 --to 5,0
  hexroute serve`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCommand())
	root.AddCommand(newRouteCommand())
	root.AddCommand(newGenerateCommand())
	return root
}

func openDB(path string) (*persistence.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", path)
	return db, nil
}

// loadWorld returns the saved map, generating and saving one from cfg when
// the database holds none.
func loadWorld(db *persistence.DB, cfg config.Config) (*world.Map, error) {
	if db.HasMap() {
		m, err := db.LoadMap()
		if err != nil {
			return nil, fmt.Errorf("load world: %w", err)
		}
		slog.Info("world loaded", "hexes", m.HexCount(), "radius", m.Radius, "wrap_width", m.Width)
		return m, nil
	}
	return generateWorld(db, cfg)
}

func generateWorld(db *persistence.DB, cfg config.Config) (*world.Map, error) {
	gen := world.DefaultGenConfig()
	gen.Seed = cfg.Seed
	gen.Radius = cfg.Radius
	gen.Width = cfg.WrapWidth

	slog.Info("generating world map...", "seed", gen.Seed, "radius", gen.Radius, "wrap_width", gen.Width)
	m := world.Generate(gen)
	for t, c := range world.TerrainCounts(m) {
		slog.Info("terrain", "type", t, "count", c)
	}

	if err := db.SaveMap(m); err != nil {
		return nil, fmt.Errorf("save world: %w", err)
	}
	if err := db.SaveMeta("seed", fmt.Sprint(gen.Seed)); err != nil {
		return nil, err
	}
	return m, nil
}
