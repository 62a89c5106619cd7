package repository

import "errors"

// ErrSerialization indica que la transacción perdió una carrera por la misma fila
// (deadlock, lock_timeout o serialization_failure). El caso de uso reintenta la operación completa.
var ErrSerialization = errors.New("conflicto de concurrencia en almacenamiento")
