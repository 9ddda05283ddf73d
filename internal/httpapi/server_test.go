package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/katalvlaran/watershed/internal/catalog"
	"github.com/katalvlaran/watershed/internal/config"
	"github.com/katalvlaran/watershed/internal/httpapi"
	"github.com/katalvlaran/watershed/internal/metrics"
	"github.com/katalvlaran/watershed/internal/service"
)

type static struct{ c *catalog.Catalog }

func (s static) Catalog() *catalog.Catalog { return s.c }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.Load(filepath.Join("..", "..", "testdata", "watershed.yaml"))
	require.NoError(t, err)
	c, err := catalog.Load(context.Background(), cfg.Layers)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	log := zaptest.NewLogger(t)
	svc := service.New(static{c}, cfg.Tracing, log, metrics.New(reg))
	h := httpapi.NewHandler(svc,
		httpapi.WithLogger(log),
		httpapi.WithGatherer(reg),
		httpapi.WithTimeout(cfg.Server.RequestTimeout),
		httpapi.WithTolerance(cfg.Tracing.SnapTolerance))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func feature(t *testing.T, data []byte) *geojson.Feature {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	return fc.Features[0]
}

//----------------------------------------------------------------------------//
// Resource Tests
//----------------------------------------------------------------------------//

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, data := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

// TestRequestID echoes a caller supplied id.
func TestRequestID(t *testing.T) {
	srv := newServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))
}

func TestRoot(t *testing.T) {
	srv := newServer(t)
	resp, data := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Service    string              `json:"service"`
		Operations []map[string]string `json:"operations"`
		Layers     []service.LayerInfo `json:"layers"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "watershed", body.Service)
	assert.Len(t, body.Operations, 4)
	require.Len(t, body.Layers, 1)
	assert.Equal(t, "Elevation", body.Layers[0].Name)
}

func TestLayers(t *testing.T) {
	srv := newServer(t)

	resp, data := do(t, srv, http.MethodGet, "/layers/0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info service.LayerInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, 5, info.Rows)
	assert.Equal(t, service.Extent{XMax: 50, YMax: 50}, info.Extent)

	resp, _ = do(t, srv, http.MethodGet, "/layers/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, path := range []string{"/layers/3", "/layers/abc"} {
		resp, data = do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, string(data), `"code":404`)
	}
}

//----------------------------------------------------------------------------//
// Operation Tests
//----------------------------------------------------------------------------//

func TestFlowPath(t *testing.T) {
	srv := newServer(t)
	tests := []struct {
		name, method, path, body string
	}{
		{"PostJSON", http.MethodPost, "/flowPath", `{"pourPoint":{"x":5,"y":5}}`},
		{"PostStrings", http.MethodPost, "/flowPath", `{"pourPoint":{"x":"5","y":"5"}}`},
		{"GetQuery", http.MethodGet, "/flowPath?f=json&pourPoint=" + url.QueryEscape(`{"x":5,"y":5}`), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := do(t, srv, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
			f := feature(t, data)
			assert.Equal(t, orb.LineString{{5, 5}, {25, 5}, {25, -5}}, f.Geometry)
			assert.Equal(t, "boundary", f.Properties["Termination"])
			assert.EqualValues(t, 4, f.Properties["Steps"])
		})
	}
}

func TestUpstreamArea(t *testing.T) {
	srv := newServer(t)

	resp, data := do(t, srv, http.MethodPost, "/upstreamArea", `{"outlet":{"x":25,"y":5},"tolerance":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	f := feature(t, data)
	assert.Equal(t, "flow_line", f.Properties["Snapped"])
	assert.InDelta(t, 2500.0, f.Properties["Shape_Area"], 1e-9)

	// the configured tolerance applies when the request has none
	resp, data = do(t, srv, http.MethodPost, "/upstreamArea", `{"outlet":{"x":15,"y":35}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	f = feature(t, data)
	assert.Equal(t, "max_accumulation", f.Properties["Snapped"])
	assert.Equal(t, "high", f.Properties["Resolution"])
}

func TestQueryRaster(t *testing.T) {
	srv := newServer(t)
	resp, data := do(t, srv, http.MethodPost, "/layers/0/queryRaster", `{"max":30}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	f := feature(t, data)
	assert.InDelta(t, 300.0, f.Properties["Shape_Area"], 1e-9)
	assert.EqualValues(t, 3, f.Properties["Cells"])
}

func TestQueryPoints(t *testing.T) {
	srv := newServer(t)
	resp, data := do(t, srv, http.MethodPost, "/layers/0/queryPoints",
		`{"points":[{"x":5,"y":45,"id":1},{"x":45,"y":15,"id":"b"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"results":[{"id":"1","result":90},{"id":"b","result":null}]}`, string(data))
}

// TestErrors maps operation failures to status codes.
func TestErrors(t *testing.T) {
	srv := newServer(t)
	tests := []struct {
		name, method, path, body string
		code                     int
	}{
		{"MissingPoint", http.MethodPost, "/flowPath", `{}`, http.StatusBadRequest},
		{"MissingY", http.MethodPost, "/flowPath", `{"pourPoint":{"x":1}}`, http.StatusBadRequest},
		{"NotJSON", http.MethodPost, "/flowPath", `pourPoint`, http.StatusBadRequest},
		{"BadNumber", http.MethodPost, "/flowPath", `{"pourPoint":{"x":"east","y":1}}`, http.StatusBadRequest},
		{"OutsideData", http.MethodPost, "/upstreamArea", `{"outlet":{"x":100,"y":100}}`, http.StatusBadRequest},
		{"NegativeTolerance", http.MethodPost, "/upstreamArea", `{"outlet":{"x":5,"y":45},"tolerance":-1}`, http.StatusBadRequest},
		{"NoRange", http.MethodPost, "/layers/0/queryRaster", `{}`, http.StatusBadRequest},
		{"UnknownLayer", http.MethodPost, "/layers/8/queryRaster", `{"min":1}`, http.StatusNotFound},
		{"PointWithoutX", http.MethodPost, "/layers/0/queryPoints", `{"points":[{"y":1}]}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.code, resp.StatusCode, string(data))

			var body struct {
				Error struct {
					Code    int    `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

// TestMetrics exposes the operation counters.
func TestMetrics(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/flowPath", `{"pourPoint":{"x":5,"y":5}}`)

	resp, data := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `watershed_operations_total{operation="flow_path",status="ok"} 1`)
}
