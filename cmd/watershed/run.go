package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/watershed/internal/service"
)

var traceCmd = &cobra.Command{
	Use:   "trace X Y",
	Short: "Trace the flow path downhill from a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close()

		f, err := a.svc.FlowPath(cmd.Context(), p)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), geojson.NewFeatureCollection().Append(f))
	},
}

var upstreamCmd = &cobra.Command{
	Use:   "upstream X Y",
	Short: "Delineate the area draining through a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close()

		tol := a.cfg.Tracing.SnapTolerance
		if cmd.Flags().Changed("tolerance") {
			tol, _ = cmd.Flags().GetFloat64("tolerance")
		}
		f, err := a.svc.UpstreamArea(cmd.Context(), p, tol)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), geojson.NewFeatureCollection().Append(f))
	},
}

var queryCmd = &cobra.Command{
	Use:   "query LAYER",
	Short: "Polygonise the cells of a raster layer within [min, max]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("layer id %q: %w", args[0], err)
		}
		var lo, hi *float64
		if cmd.Flags().Changed("min") {
			v, _ := cmd.Flags().GetFloat64("min")
			lo = &v
		}
		if cmd.Flags().Changed("max") {
			v, _ := cmd.Flags().GetFloat64("max")
			hi = &v
		}
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close()

		f, err := a.svc.QueryRaster(cmd.Context(), id, lo, hi)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), geojson.NewFeatureCollection().Append(f))
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample LAYER X,Y [X,Y...]",
	Short: "Read a raster layer at one or more points",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("layer id %q: %w", args[0], err)
		}
		queries := make([]service.PointQuery, 0, len(args)-1)
		for i, arg := range args[1:] {
			x, y, ok := strings.Cut(arg, ",")
			if !ok {
				return fmt.Errorf("point %q: want X,Y", arg)
			}
			p, err := parsePoint(x, y)
			if err != nil {
				return err
			}
			queries = append(queries, service.PointQuery{ID: strconv.Itoa(i), Point: p})
		}
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close()

		results, err := a.svc.QueryPoints(cmd.Context(), id, queries)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"results": results})
	},
}

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List the queryable raster layers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close()

		layers, err := a.svc.Layers()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"layers": layers})
	},
}

func init() {
	rootCmd.AddCommand(traceCmd, upstreamCmd, queryCmd, sampleCmd, layersCmd)
	upstreamCmd.Flags().Float64P("tolerance", "t", 0, "Snap tolerance in map units (default from config)")
	queryCmd.Flags().Float64("min", 0, "Lowest value to include")
	queryCmd.Flags().Float64("max", 0, "Highest value to include")
}

func parsePoint(xs, ys string) (orb.Point, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("y %q: %w", ys, err)
	}
	return orb.Point{x, y}, nil
}
