package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/talgya/hexroute/internal/config"
	"github.com/talgya/hexroute/internal/pathfind"
	"github.com/talgya/hexroute/internal/travel"
	"github.com/talgya/hexroute/internal/world"
)

var errNoRoute = errors.New("no route")

func newRouteCommand() *cobra.Command {
	var (
		from, to string
		local    bool
		speed    float64
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Find the least-cost route between two hexes",
		Long: `Find the least-cost route between two hexes of the saved world.

With --local the search runs on the neighborhood grid around the
origin instead. Every hex whose center lies within 10 hex spacings of the
origin is open and costs 1 to enter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := world.ParseKey(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			goal, err := world.ParseKey(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			out := cmd.OutOrStdout()

			if local {
				route, ok := pathfind.FindLocalRoute(start, goal)
				if !ok {
					return errNoRoute
				}
				printRoute(out, route)
				return nil
			}

			if err := travel.ValidateSpeed(speed); err != nil {
				return err
			}
			cfg := config.Load()
			db, err := openDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			m, err := loadWorld(db, cfg)
			if err != nil {
				return err
			}

			route, ok := pathfind.FindRoute(start, goal, m)
			if !ok {
				return errNoRoute
			}
			duration, err := travel.TotalDuration(route, m, speed)
			if err != nil {
				return err
			}
			wall, err := travel.WallClock(duration, cfg.TimeUnit)
			if err != nil {
				return err
			}
			printRoute(out, route)
			fmt.Fprintf(out, "  Cost:     %.2f\n", route.Cost(m))
			fmt.Fprintf(out, "  Duration: %.2f units (%s)\n", duration, travel.FormatDuration(wall))
			printSummary(out, travel.TerrainSummary(route, m))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start hex as q,r")
	cmd.Flags().StringVar(&to, "to", "", "Goal hex as q,r")
	cmd.Flags().BoolVar(&local, "local", false, "Search the local neighborhood grid")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Cost units covered per time unit")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func printRoute(out io.Writer, route pathfind.Route) {
	fmt.Fprintf(out, "Route %s -> %s (%d steps)\n", route.Start(), route.Goal(), route.Steps())
	for i, c := range route {
		fmt.Fprintf(out, "  %3d  %s\n", i, c.Key())
	}
}

func printSummary(out io.Writer, summary map[world.Terrain]int) {
	terrains := make([]world.Terrain, 0, len(summary))
	for t := range summary {
		terrains = append(terrains, t)
	}
	sort.Slice(terrains, func(i, j int) bool { return summary[terrains[i]] > summary[terrains[j]] })
	fmt.Fprintln(out, "  Terrain:")
	for _, t := range terrains {
		fmt.Fprintf(out, "    %-15s %d\n", t, summary[t])
	}
}
