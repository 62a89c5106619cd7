package repository

import (
	"context"
	"time"
)

// IdempotencyStore guarda las claves de idempotencia de ajustes y traslados
// para que un reenvío del mismo request no descuente dos veces.
type IdempotencyStore interface {
	// MarkProcessed reserva la clave con TTL. Devuelve false si ya estaba reservada.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release libera la clave (la operación falló y el cliente puede reintentar).
	Release(ctx context.Context, key string) error
	Close() error
}
