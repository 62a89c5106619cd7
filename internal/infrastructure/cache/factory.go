package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// NewIdempotencyStore devuelve el store de Redis si REDIS_HOST está definido y responde;
// si no, cae al store en memoria y lo registra como advertencia.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) repository.IdempotencyStore {
	if cfg.Host == "" {
		log.Info().Msg("idempotencia en memoria (REDIS_HOST vacío)")
		return NewMemoryIdempotencyStore(time.Minute)
	}
	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr()).Msg("Redis no disponible, idempotencia en memoria")
		return NewMemoryIdempotencyStore(time.Minute)
	}
	log.Info().Str("addr", cfg.Addr()).Msg("idempotencia en Redis")
	return store
}
