// Package service runs the hydrology operations against the current layer
// catalog and shapes their results as GeoJSON features.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/katalvlaran/watershed/boundary"
	"github.com/katalvlaran/watershed/flowpath"
	"github.com/katalvlaran/watershed/internal/catalog"
	"github.com/katalvlaran/watershed/internal/config"
	"github.com/katalvlaran/watershed/internal/metrics"
	"github.com/katalvlaran/watershed/raster"
	"github.com/katalvlaran/watershed/snap"
	"github.com/katalvlaran/watershed/upstream"
)

// Operation names used in logs and metrics.
const (
	OpFlowPath     = "flow_path"
	OpUpstreamArea = "upstream_area"
	OpQueryRaster  = "query_raster"
	OpQueryPoints  = "query_points"
)

// Resolution values reported on upstream area features.
const (
	ResolutionHigh = "high"
	ResolutionLow  = "low"
)

// Sentinel errors returned by the operations.
var (
	// ErrNoCatalog: no layers have been loaded.
	ErrNoCatalog = errors.New("service: no layers loaded")
	// ErrLayerNotFound: the raster layer id is unknown.
	ErrLayerNotFound = errors.New("service: layer not found")
	// ErrNoRange: a raster query gave neither a minimum nor a maximum.
	ErrNoRange = errors.New("service: at least one of min and max is required")
	// ErrInvalidRange: the minimum is greater than the maximum.
	ErrInvalidRange = errors.New("service: min is greater than max")
	// ErrOutsideData: the point does not fall on the flow direction grid.
	ErrOutsideData = errors.New("service: point lies outside the flow direction data")
	// ErrNoFlowDirection: the catalog has no low-resolution flow direction grid.
	ErrNoFlowDirection = errors.New("service: no flow direction layer")
)

// Catalogs supplies the layer snapshot an operation runs against.
type Catalogs interface {
	Catalog() *catalog.Catalog
}

// Service executes operations. It is safe for concurrent use.
type Service struct {
	catalogs Catalogs
	tracing  config.TracingConfig
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// New returns a Service. A nil logger is replaced by a no-op logger; m may
// be nil.
func New(src Catalogs, tracing config.TracingConfig, log *zap.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{catalogs: src, tracing: tracing, log: log, metrics: m}
}

// Tracing returns the tracing parameters the service was built with.
func (s *Service) Tracing() config.TracingConfig { return s.tracing }

func (s *Service) catalog() (*catalog.Catalog, error) {
	c := s.catalogs.Catalog()
	if c == nil {
		return nil, ErrNoCatalog
	}
	return c, nil
}

// FlowPath traces the downhill path from p. The high-resolution tile under
// p, if any, is followed first; the low-resolution grid continues from
// where it stopped.
func (s *Service) FlowPath(ctx context.Context, p orb.Point) (_ *geojson.Feature, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(OpFlowPath, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}
	if c.FlowDirection == nil {
		return nil, ErrNoFlowDirection
	}

	stages := make([]flowpath.Stage, 0, 2)
	if t := c.TileAt(p); t != nil {
		stages = append(stages, flowpath.Stage{Grid: t.FlowDirection, MaxSteps: s.tracing.HighResolutionMaxSteps})
	}
	stages = append(stages, flowpath.Stage{Grid: c.FlowDirection, MaxSteps: s.tracing.LowResolutionMaxSteps})

	res, err := flowpath.TraceStages(p, stages...)
	if err != nil {
		return nil, fmt.Errorf("service: flow path: %w", err)
	}
	s.metrics.Steps(res.Steps)

	f := geojson.NewFeature(res.Path)
	f.Properties["Shape_Length"] = planar.Length(res.Path)
	f.Properties["Shape_Units"] = c.ShapeUnits
	f.Properties["Steps"] = res.Steps
	f.Properties["Termination"] = res.Stop.String()

	s.log.Debug("flow path traced",
		zap.Float64("x", p[0]), zap.Float64("y", p[1]),
		zap.Int("stages", len(stages)),
		zap.Int("steps", res.Steps),
		zap.Int("vertices", len(res.Path)),
		zap.Stringer("stop", res.Stop))
	return f, nil
}

// UpstreamArea delineates the area draining through p. The pour point is
// snapped first (flow lines inside the flow area, otherwise the largest
// accumulation of the high-resolution tile within tolerance). The
// high-resolution grids are used only when a tile covers p and the
// low-resolution accumulation at the snapped point is below the
// configured threshold.
func (s *Service) UpstreamArea(ctx context.Context, p orb.Point, tolerance float64) (_ *geojson.Feature, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(OpUpstreamArea, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}
	if c.FlowDirection == nil {
		return nil, ErrNoFlowDirection
	}

	tile := c.TileAt(p)
	in := snap.Input{FlowArea: c.FlowArea, FlowLines: c.FlowLines, Tolerance: tolerance}
	if tile != nil {
		in.Accumulation = tile.Accumulation
	}
	pour, method, err := snap.PourPoint(p, in)
	if err != nil {
		return nil, fmt.Errorf("service: snap pour point: %w", err)
	}

	grid, resolution := c.FlowDirection, ResolutionLow
	if tile != nil && tile.Contains(pour) && s.lowAccumulation(c, pour) < s.tracing.HighResolutionThreshold {
		grid, resolution = tile.FlowDirection, ResolutionHigh
	}
	seed := grid.MapToCell(pour)
	if !grid.InBounds(seed.Col, seed.Row) {
		return nil, fmt.Errorf("%w: (%g, %g)", ErrOutsideData, pour[0], pour[1])
	}

	occ, err := upstream.Accumulate(grid, seed, upstream.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("service: upstream area: %w", err)
	}
	cells := occ.Count()
	s.metrics.Cells(cells)

	mp := Polygons(boundary.Rings(occ))
	f := areaFeature(mp, c.ShapeUnits)
	f.Properties["Cells"] = cells
	f.Properties["Snapped"] = method.String()
	f.Properties["Resolution"] = resolution
	f.Properties["PourPoint"] = []float64{pour[0], pour[1]}

	s.log.Debug("upstream area delineated",
		zap.Float64("x", p[0]), zap.Float64("y", p[1]),
		zap.Float64("pour_x", pour[0]), zap.Float64("pour_y", pour[1]),
		zap.Stringer("snap", method),
		zap.String("resolution", resolution),
		zap.Int("cells", cells),
		zap.Int("polygons", len(mp)))
	return f, nil
}

// lowAccumulation reads the low-resolution accumulation at p; an absent
// value or a missing grid counts as zero.
func (s *Service) lowAccumulation(c *catalog.Catalog, p orb.Point) float64 {
	if c.Accumulation == nil {
		return 0
	}
	v, ok := c.Accumulation.ValueAt(p)
	if !ok {
		return 0
	}
	return v
}

// QueryRaster returns the polygons covering the cells of raster layer id
// whose value lies in [min, max]. A nil bound is open on that side.
func (s *Service) QueryRaster(ctx context.Context, id int, min, max *float64) (_ *geojson.Feature, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(OpQueryRaster, start, err) }()

	if min == nil && max == nil {
		return nil, ErrNoRange
	}
	if min != nil && max != nil && *min > *max {
		return nil, fmt.Errorf("%w: %g > %g", ErrInvalidRange, *min, *max)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}
	layer, ok := c.Raster(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLayerNotFound, id)
	}

	lo, hi := math.NaN(), math.NaN()
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	occ := raster.Threshold(layer.Grid, lo, hi)
	cells := occ.Count()

	f := areaFeature(Polygons(boundary.Rings(occ)), c.ShapeUnits)
	f.Properties["Cells"] = cells
	f.Properties["Regions"] = len(occ.Components())
	f.Properties["Layer"] = layer.Name

	s.log.Debug("raster queried",
		zap.Int("layer", id),
		zap.Float64("min", lo), zap.Float64("max", hi),
		zap.Int("cells", cells))
	return f, nil
}

// PointQuery is one sample location; ID is echoed back in the result.
type PointQuery struct {
	ID    string
	Point orb.Point
}

// PointResult is the value at a sampled location, nil when absent.
type PointResult struct {
	ID     string   `json:"id"`
	Result *float64 `json:"result"`
}

// QueryPoints samples raster layer id at every point, in order.
func (s *Service) QueryPoints(ctx context.Context, id int, points []PointQuery) (_ []PointResult, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(OpQueryPoints, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layer, err := s.layer(id)
	if err != nil {
		return nil, err
	}

	out := make([]PointResult, len(points))
	for i, q := range points {
		out[i].ID = q.ID
		if v, ok := layer.Grid.ValueAt(q.Point); ok {
			out[i].Result = &v
		}
	}
	s.log.Debug("points queried", zap.Int("layer", id), zap.Int("points", len(points)))
	return out, nil
}

func (s *Service) layer(id int) (catalog.RasterLayer, error) {
	c, err := s.catalog()
	if err != nil {
		return catalog.RasterLayer{}, err
	}
	l, ok := c.Raster(id)
	if !ok {
		return catalog.RasterLayer{}, fmt.Errorf("%w: %d", ErrLayerNotFound, id)
	}
	return l, nil
}

// areaFeature wraps mp with its perimeter, area and units.
func areaFeature(mp orb.MultiPolygon, units string) *geojson.Feature {
	f := geojson.NewFeature(mp)
	f.Properties["Shape_Length"] = planar.Length(mp)
	f.Properties["Shape_Area"] = planar.Area(mp)
	f.Properties["Shape_Units"] = units
	return f
}
