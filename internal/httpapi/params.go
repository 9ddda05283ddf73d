package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/paulmach/orb"
)

// errBadRequest marks malformed request parameters.
var errBadRequest = errors.New("httpapi: invalid request")

const maxBody = 8 << 20

type pointParam struct {
	X *float64 `mapstructure:"x"`
	Y *float64 `mapstructure:"y"`
}

func (p *pointParam) point(name string) (orb.Point, error) {
	if p == nil || p.X == nil || p.Y == nil {
		return orb.Point{}, fmt.Errorf("%w: %s needs x and y", errBadRequest, name)
	}
	return orb.Point{*p.X, *p.Y}, nil
}

type flowPathRequest struct {
	PourPoint *pointParam `mapstructure:"pourPoint"`
}

type upstreamAreaRequest struct {
	Outlet    *pointParam `mapstructure:"outlet"`
	Tolerance *float64    `mapstructure:"tolerance"`
}

type queryRasterRequest struct {
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

type pointQueryParam struct {
	ID string   `mapstructure:"id"`
	X  *float64 `mapstructure:"x"`
	Y  *float64 `mapstructure:"y"`
}

type queryPointsRequest struct {
	Points []pointQueryParam `mapstructure:"points"`
}

// decode gathers the request parameters and decodes them into dst.
// Parameters come from a JSON object body and from the query string; query
// values that look like JSON objects or arrays are parsed as JSON. Values
// are weakly typed: "10" decodes into a float field.
func decode(r *http.Request, dst any) error {
	raw, err := params(r)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func params(r *http.Request) (map[string]any, error) {
	raw := make(map[string]any)
	if r.Body != nil && r.Method != http.MethodGet {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, fmt.Errorf("%w: body is not a JSON object: %v", errBadRequest, err)
			}
		}
	}
	for key, vals := range r.URL.Query() {
		if len(vals) == 0 {
			continue
		}
		v := strings.TrimSpace(vals[0])
		if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
			var parsed any
			if err := json.Unmarshal([]byte(v), &parsed); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", errBadRequest, key, err)
			}
			raw[key] = parsed
			continue
		}
		raw[key] = v
	}
	return raw, nil
}
