package calculator

import (
	"context"
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/cache"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/ledger"
	"github.com/iwvelando/loan-calculator/internal/optimizer"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// FromConfig builds a Service from loaded configuration. Metrics are
// registered with reg when it is non-nil. The returned Service owns the cache;
// call Close when done.
func FromConfig(conf *config.Configuration, logger *zap.Logger, reg prometheus.Registerer) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := cache.New(cache.Options{
		Backend:    conf.Cache.Backend,
		RedisAddr:  conf.Cache.RedisAddr,
		RedisDB:    conf.Cache.RedisDB,
		TTL:        conf.Cache.TTL,
		MaxEntries: conf.Cache.MaxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	checkCache(c, conf.Cache.Backend, logger)

	var metrics *Metrics
	if reg != nil {
		metrics = NewMetrics(reg)
	}

	logger.Debug("calculator configured",
		zap.String("op", "calculator.FromConfig"),
		zap.String("cacheBackend", conf.Cache.Backend),
		zap.Int("safetyFactor", conf.Engine.SafetyFactor),
		zap.Int("optimizerIterations", conf.Engine.Optimizer.MaxIterations),
	)

	return New(Options{
		Logger: logger,
		Generator: loans.NewScheduleGenerator(logger, loans.GeneratorOptions{
			SafetyFactor: conf.Engine.SafetyFactor,
			Epsilon:      conf.Engine.Epsilon,
		}),
		Cache:   c,
		Ledger:  ledger.New(logger),
		Metrics: metrics,
		Optimizer: optimizer.Config{
			Tolerance:     conf.Engine.Optimizer.Tolerance,
			MaxIterations: conf.Engine.Optimizer.MaxIterations,
		},
	}), nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// checkCache reports an unreachable remote cache at startup. Lookups fall
// through to computation when the cache fails, so this never aborts.
func checkCache(c cache.Cache, backend string, logger *zap.Logger) {
	p, ok := c.(pinger)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.CachePingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		logger.Warn("cache unreachable, results will be computed on every request",
			zap.String("op", "calculator.FromConfig"),
			zap.String("cacheBackend", backend),
			zap.Error(err),
		)
		return
	}
	logger.Debug("cache reachable",
		zap.String("op", "calculator.FromConfig"),
		zap.String("cacheBackend", backend),
	)
}

// Close releases the cache.
func (s *Service) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}
