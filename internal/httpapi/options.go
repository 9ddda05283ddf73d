package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the handler via functional arguments.
type Option func(*Options)

// Options holds the handler settings.
type Options struct {
	// Logger receives one entry per request. Nil disables request logging.
	Logger *zap.Logger
	// Gatherer backs GET /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
	// Timeout bounds each request; zero disables the limit.
	Timeout time.Duration
	// Tolerance is the snap tolerance used when a request omits one.
	Tolerance float64
}

// DefaultOptions returns a silent handler with no timeout and zero tolerance.
func DefaultOptions() Options {
	return Options{Logger: zap.NewNop()}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *Options) { o.Gatherer = g }
}

// WithTimeout bounds request handling.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithTolerance sets the default snap tolerance.
func WithTolerance(t float64) Option {
	return func(o *Options) { o.Tolerance = t }
}
