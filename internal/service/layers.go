package service

import "github.com/katalvlaran/watershed/internal/catalog"

// Extent is the bounding box of a layer in map units.
type Extent struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// LayerInfo describes a queryable raster layer.
type LayerInfo struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Units     string  `json:"units,omitempty"`
	Rows      int     `json:"rows"`
	Columns   int     `json:"columns"`
	CellSizeX float64 `json:"cellSizeX"`
	CellSizeY float64 `json:"cellSizeY"`
	Extent    Extent  `json:"extent"`
}

// Layers lists the queryable raster layers ordered by id.
func (s *Service) Layers() ([]LayerInfo, error) {
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}
	out := make([]LayerInfo, 0, len(c.Rasters))
	for _, l := range c.Rasters {
		out = append(out, describe(l))
	}
	return out, nil
}

// Layer describes raster layer id.
func (s *Service) Layer(id int) (LayerInfo, error) {
	l, err := s.layer(id)
	if err != nil {
		return LayerInfo{}, err
	}
	return describe(l), nil
}

func describe(l catalog.RasterLayer) LayerInfo {
	b := l.Grid.Bound()
	return LayerInfo{
		ID:        l.ID,
		Name:      l.Name,
		Units:     l.Units,
		Rows:      l.Grid.Height,
		Columns:   l.Grid.Width,
		CellSizeX: l.Grid.CellSizeX,
		CellSizeY: l.Grid.CellSizeY,
		Extent:    Extent{XMin: b.Min[0], YMin: b.Min[1], XMax: b.Max[0], YMax: b.Max[1]},
	}
}
