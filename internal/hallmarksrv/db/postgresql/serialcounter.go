package postgresql

import (
	"context"
	"database/sql"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
)

// ReserveSerial reserves the next value of a numbering space. The counter row
// is taken FOR UPDATE so concurrent writers serialize on it; when the row does
// not exist yet the counter is seeded by scanning the highest serial already
// persisted with the given prefix, which recovers the space across restarts.
func (hd *hallmarkDb) ReserveSerial(ctx context.Context, space string, prefix string) (int64, apperrors.Error) {
	// Two writers can race on the very first reservation of a space: both see
	// no counter row and both insert. The loser hits the primary key and is
	// retried once, now taking the row lock path.
	for attempt := 0; attempt < 2; attempt++ {
		value, err, retry := hd.reserveSerialTx(ctx, space, prefix)
		if retry {
			continue
		}
		return value, err
	}
	return 0, dberror.ErrDatabase.Msg("failed to reserve serial after retry")
}

func (hd *hallmarkDb) reserveSerialTx(ctx context.Context, space string, prefix string) (int64, apperrors.Error, bool) {
	tx, errdb := hd.conn().BeginTx(ctx, &sql.TxOptions{})
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to start transaction")
		return 0, dberror.ErrDatabase.Err(errdb), false
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Ctx(ctx).Error().Err(rollbackErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var current int64
	txErr = tx.QueryRowContext(ctx,
		`SELECT value FROM serial_counters WHERE space = $1 FOR UPDATE`, space).Scan(&current)

	var next int64
	switch {
	case txErr == sql.ErrNoRows:
		// Seed from the highest persisted serial in this space.
		var seed int64
		txErr = tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX((substring(serial_number from '([0-9]+)$'))::bigint), 0)
			FROM hallmarks WHERE prefix = $1`, prefix).Scan(&seed)
		if txErr != nil {
			log.Ctx(ctx).Error().Err(txErr).Msg("failed to scan highest serial")
			return 0, dberror.ErrDatabase.Err(txErr), false
		}
		next = seed + 1
		_, txErr = tx.ExecContext(ctx,
			`INSERT INTO serial_counters (space, value) VALUES ($1, $2)`, space, next)
		if txErr != nil {
			if pgErr, ok := txErr.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
				return 0, nil, true // lost the first-reservation race, retry
			}
			log.Ctx(ctx).Error().Err(txErr).Msg("failed to seed serial counter")
			return 0, dberror.ErrDatabase.Err(txErr), false
		}
	case txErr != nil:
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to lock serial counter")
		return 0, dberror.ErrDatabase.Err(txErr), false
	default:
		next = current + 1
		_, txErr = tx.ExecContext(ctx,
			`UPDATE serial_counters SET value = $1, updated_at = NOW() WHERE space = $2`, next, space)
		if txErr != nil {
			log.Ctx(ctx).Error().Err(txErr).Msg("failed to advance serial counter")
			return 0, dberror.ErrDatabase.Err(txErr), false
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to commit transaction")
		return 0, dberror.ErrDatabase.Err(txErr), false
	}
	return next, nil, false
}
