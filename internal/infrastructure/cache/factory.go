package cache

import (
	"context"
	"io"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// VendorNoCacheCloser is a vendor cache that owns resources
type VendorNoCacheCloser interface {
	integration.VendorNoCache
	io.Closer
}

// NewVendorNoCache picks Redis when it is enabled and reachable, and the
// in-memory cache otherwise.
func NewVendorNoCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) VendorNoCacheCloser {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory vendor cache")
		return NewInMemoryVendorNoCache()
	}

	store, err := NewRedisVendorNoCache(ctx, &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory vendor cache. "+
			"Vendor mappings will not be shared between instances.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryVendorNoCache()
	}

	logger.Info("Using Redis vendor cache", zap.String("addr", cfg.Addr()))
	return store
}
