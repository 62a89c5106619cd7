package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, item_id, location_id, delta, quantity_before, quantity_after, type, reason, actor_id, reference_id, created_at`

// MovementRepo implementación del log de movimientos sobre PostgreSQL (usable con pool o tx).
// La tabla rechaza UPDATE y DELETE por trigger; aquí solo hay INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste el movimiento y completa ID con el valor de la secuencia.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var referenceID *string
	if m.ReferenceID != "" {
		referenceID = &m.ReferenceID
	}
	const query = `
		INSERT INTO stock_movements (item_id, location_id, delta, quantity_before, quantity_after, type, reason, actor_id, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.ItemID, m.LocationID, m.Delta, m.QuantityBefore, m.QuantityAfter,
		string(m.Type), m.Reason, m.ActorID, referenceID, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return wrapErr("append movement", err)
	}
	return nil
}

// List lista movimientos filtrados, más recientes primero, junto con el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int64, error) {
	where, args := buildMovementWhere(filter)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count movements", err)
	}

	pos := len(args) + 1
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	list, err := r.query(ctx, "list movements", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Totals agrega entradas, salidas y conteo por tipo con los mismos filtros de List.
func (r *MovementRepo) Totals(ctx context.Context, filter repository.MovementFilter) (repository.MovementTotals, error) {
	where, args := buildMovementWhere(filter)
	query := `
		SELECT type,
		       COUNT(*),
		       COALESCE(SUM(delta) FILTER (WHERE delta > 0), 0)::BIGINT,
		       COALESCE(SUM(-delta) FILTER (WHERE delta < 0), 0)::BIGINT
		FROM stock_movements` + where + `
		GROUP BY type`

	totals := repository.MovementTotals{CountByType: make(map[entity.MovementType]int64)}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return totals, wrapErr("movement totals", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ            string
			count, in, out int64
		)
		if err := rows.Scan(&typ, &count, &in, &out); err != nil {
			return totals, wrapErr("scan movement totals", err)
		}
		totals.CountByType[entity.MovementType(typ)] = count
		totals.Count += count
		totals.TotalIn += in
		totals.TotalOut += out
	}
	return totals, rows.Err()
}

// ListByReference devuelve los movimientos con el reference id dado, en orden de inserción.
func (r *MovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference_id = $1 ORDER BY id`
	return r.query(ctx, "list movements by reference", query, referenceID)
}

// History devuelve el historial completo del par en orden cronológico.
func (r *MovementRepo) History(ctx context.Context, itemID, locationID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE item_id = $1 AND location_id = $2 ORDER BY created_at, id`
	return r.query(ctx, "movement history", query, itemID, locationID)
}

func (r *MovementRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrapErr("scan movement", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m           entity.Movement
		typ         string
		referenceID *string
	)
	if err := row.Scan(&m.ID, &m.ItemID, &m.LocationID, &m.Delta, &m.QuantityBefore, &m.QuantityAfter,
		&typ, &m.Reason, &m.ActorID, &referenceID, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	if referenceID != nil {
		m.ReferenceID = *referenceID
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

// buildMovementWhere arma el WHERE con placeholders posicionales para los filtros presentes.
func buildMovementWhere(f repository.MovementFilter) (string, []any) {
	var (
		where string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if f.ItemID != "" {
		add("item_id = $%d", f.ItemID)
	}
	if f.LocationID != "" {
		add("location_id = $%d", f.LocationID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.DateFrom != nil {
		add("created_at >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("created_at <= $%d", *f.DateTo)
	}
	return where, args
}
