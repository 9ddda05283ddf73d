package raster

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// maxPrealloc caps the value slice allocated up front from the header.
const maxPrealloc = 1 << 20

// maxDimension bounds ncols and nrows so their product fits in a 64-bit int.
const maxDimension = math.MaxInt32

// asciiHeader collects the ESRI ASCII grid header keys.
type asciiHeader struct {
	ncols, nrows int
	xll, yll     float64
	xCenter      bool
	yCenter      bool
	dx, dy       float64
	noData       float64
	seen         map[string]bool
}

// LoadASCII opens path and decodes it with ReadASCII.
func LoadASCII(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadASCII decodes an ESRI ASCII grid. Recognised header keys (case
// insensitive): ncols, nrows, xllcorner|xllcenter, yllcorner|yllcenter,
// cellsize or dx/dy, nodata_value. Values follow in row-major order, first
// row northernmost.
// Complexity: O(W×H).
func ReadASCII(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	h := asciiHeader{noData: math.NaN(), seen: make(map[string]bool)}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if !isHeaderKey(key) {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing value for %q", ErrASCIIHeader, key)
		}
		if err := h.set(key, sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("raster: read ascii grid: %w", err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	n := h.ncols * h.nrows
	// the header is not trusted for allocation; append grows past the cap
	values := make([]float64, 0, min(n, maxPrealloc))
	if first != "" {
		v, err := strconv.ParseFloat(first, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrASCIIData, first)
		}
		values = append(values, v)
	}
	for len(values) < n && sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrASCIIData, sc.Text())
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("raster: read ascii grid: %w", err)
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrASCIIData, n, len(values))
	}

	xll, yll := h.xll, h.yll
	if h.xCenter {
		xll -= h.dx / 2
	}
	if h.yCenter {
		yll -= h.dy / 2
	}
	f := Frame{
		Width:     h.ncols,
		Height:    h.nrows,
		CellSizeX: h.dx,
		CellSizeY: h.dy,
		OriginX:   xll,
		OriginY:   yll + float64(h.nrows)*h.dy,
	}
	return newGrid(f, values, h.noData), nil
}

func isHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter",
		"cellsize", "dx", "dy", "nodata_value":
		return true
	}
	return false
}

func (h *asciiHeader) set(key, raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrASCIIHeader, key, raw)
	}
	if (key == "ncols" || key == "nrows") && (v != math.Trunc(v) || v > maxDimension) {
		return fmt.Errorf("%w: %s=%q is not a valid dimension", ErrASCIIHeader, key, raw)
	}
	h.seen[key] = true
	switch key {
	case "ncols":
		h.ncols = int(v)
	case "nrows":
		h.nrows = int(v)
	case "xllcorner":
		h.xll = v
	case "xllcenter":
		h.xll, h.xCenter = v, true
	case "yllcorner":
		h.yll = v
	case "yllcenter":
		h.yll, h.yCenter = v, true
	case "cellsize":
		h.dx, h.dy = v, v
	case "dx":
		h.dx = v
	case "dy":
		h.dy = v
	case "nodata_value":
		h.noData = v
	}
	return nil
}

func (h *asciiHeader) validate() error {
	if h.ncols <= 0 || h.nrows <= 0 {
		return fmt.Errorf("%w: ncols and nrows must be positive", ErrASCIIHeader)
	}
	if !(h.dx > 0) || !(h.dy > 0) {
		return fmt.Errorf("%w: cell size must be positive", ErrASCIIHeader)
	}
	if !(h.seen["xllcorner"] || h.seen["xllcenter"]) || !(h.seen["yllcorner"] || h.seen["yllcenter"]) {
		return fmt.Errorf("%w: missing lower-left corner", ErrASCIIHeader)
	}
	return nil
}
