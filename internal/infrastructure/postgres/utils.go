package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Códigos SQLSTATE que indican que la transacción perdió una carrera y puede reintentarse.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03" // lock_timeout
)

// isRetryable verifica si el error es un conflicto de concurrencia de PostgreSQL.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return true
		}
	}
	return false
}

// wrapErr envuelve err con op; los conflictos de concurrencia se traducen a repository.ErrSerialization
// para que el caso de uso reintente.
func wrapErr(op string, err error) error {
	if isRetryable(err) {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrSerialization, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
