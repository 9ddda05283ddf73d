// Package catalog loads the raster and vector layers named by the
// configuration and keeps the current set in memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/watershed/internal/config"
	"github.com/katalvlaran/watershed/raster"
)

// Sentinel errors for layer loading.
var (
	// ErrTileMismatch: a tile's direction and accumulation grids differ in
	// size or georeference.
	ErrTileMismatch = errors.New("catalog: tile grids do not share a frame")
	// ErrNoLineGeometry: the flow line file holds no line geometry.
	ErrNoLineGeometry = errors.New("catalog: no line geometry in flow line file")
)

// Tile is a high-resolution flow direction grid and its accumulation grid.
type Tile struct {
	FlowDirection *raster.Grid
	Accumulation  *raster.Grid
}

// Contains reports whether p falls inside the tile.
func (t Tile) Contains(p orb.Point) bool {
	return t.FlowDirection.Contains(p)
}

// RasterLayer is a queryable raster with its identity.
type RasterLayer struct {
	ID    int
	Name  string
	Units string
	Grid  *raster.Grid
}

// Catalog is an immutable snapshot of every loaded layer.
type Catalog struct {
	FlowDirection *raster.Grid
	Accumulation  *raster.Grid
	// FlowArea and FlowLines are optional; nil disables flow-line snapping.
	FlowArea   *raster.Grid
	FlowLines  orb.MultiLineString
	Tiles      []Tile
	Rasters    []RasterLayer // sorted by ID
	ShapeUnits string
}

// TileAt returns the first tile containing p, or nil.
func (c *Catalog) TileAt(p orb.Point) *Tile {
	for i := range c.Tiles {
		if c.Tiles[i].Contains(p) {
			return &c.Tiles[i]
		}
	}
	return nil
}

// Raster returns the raster layer with the given id.
func (c *Catalog) Raster(id int) (RasterLayer, bool) {
	i := sort.Search(len(c.Rasters), func(i int) bool { return c.Rasters[i].ID >= id })
	if i < len(c.Rasters) && c.Rasters[i].ID == id {
		return c.Rasters[i], true
	}
	return RasterLayer{}, false
}

// Load reads every layer of cfg concurrently. The first failure cancels the
// remaining loads and is returned.
func Load(ctx context.Context, cfg config.LayersConfig) (*Catalog, error) {
	c := &Catalog{
		Tiles:      make([]Tile, len(cfg.Tiles)),
		Rasters:    make([]RasterLayer, len(cfg.Rasters)),
		ShapeUnits: cfg.ShapeUnits,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	grid := func(path string, dst **raster.Grid) {
		if path == "" {
			return
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			g, err := raster.LoadASCII(path)
			if err != nil {
				return err
			}
			*dst = g
			return nil
		})
	}

	grid(cfg.FlowDirection, &c.FlowDirection)
	grid(cfg.FlowAccumulation, &c.Accumulation)
	grid(cfg.FlowArea, &c.FlowArea)
	for i, t := range cfg.Tiles {
		grid(t.FlowDirection, &c.Tiles[i].FlowDirection)
		grid(t.FlowAccumulation, &c.Tiles[i].Accumulation)
	}
	for i, r := range cfg.Rasters {
		c.Rasters[i] = RasterLayer{ID: r.ID, Name: r.Name, Units: r.Units}
		grid(r.Path, &c.Rasters[i].Grid)
	}
	if cfg.FlowLines != "" {
		eg.Go(func() error {
			lines, err := LoadFlowLines(cfg.FlowLines)
			if err != nil {
				return err
			}
			c.FlowLines = lines
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, t := range c.Tiles {
		if t.FlowDirection.Frame != t.Accumulation.Frame {
			return nil, fmt.Errorf("%w: tile %d", ErrTileMismatch, i)
		}
	}
	sort.Slice(c.Rasters, func(i, j int) bool { return c.Rasters[i].ID < c.Rasters[j].ID })
	return c, nil
}

// LoadFlowLines reads a GeoJSON FeatureCollection and returns every
// LineString and MultiLineString geometry in it.
func LoadFlowLines(path string) (orb.MultiLineString, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	var lines orb.MultiLineString
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			lines = append(lines, g...)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLineGeometry, path)
	}
	return lines, nil
}
