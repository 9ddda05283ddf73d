package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/katalvlaran/watershed/internal/config"
	"github.com/katalvlaran/watershed/internal/metrics"
)

// Store holds the current Catalog and swaps it on Reload. Readers always
// see a complete snapshot.
type Store struct {
	cfg     config.LayersConfig
	log     *zap.Logger
	metrics *metrics.Metrics

	mu  sync.RWMutex
	cur *Catalog
}

// NewStore loads cfg once and returns a Store serving the result.
func NewStore(ctx context.Context, cfg config.LayersConfig, log *zap.Logger, m *metrics.Metrics) (*Store, error) {
	s := &Store{cfg: cfg, log: log, metrics: m}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Catalog returns the current snapshot.
func (s *Store) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Reload loads every layer again. On failure the previous snapshot is kept.
func (s *Store) Reload(ctx context.Context) error {
	c, err := Load(ctx, s.cfg)
	s.metrics.Reload(err)
	if err != nil {
		s.log.Error("layer load failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
	s.log.Info("layers loaded",
		zap.Int("tiles", len(c.Tiles)),
		zap.Int("rasters", len(c.Rasters)),
		zap.Int("flow_lines", len(c.FlowLines)))
	return nil
}
