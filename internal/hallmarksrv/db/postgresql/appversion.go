package postgresql

import (
	"context"
	"database/sql"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
)

// CreateAppVersion persists a release record.
func (hd *hallmarkDb) CreateAppVersion(ctx context.Context, version *models.AppVersion) apperrors.Error {
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}

	query := `
		INSERT INTO app_versions (id, version, notes, hallmark_id)
		VALUES ($1, $2, $3, $4)
		RETURNING released_at`

	errdb := hd.conn().QueryRowContext(ctx, query, version.ID, version.Version,
		version.Notes, version.HallmarkID).Scan(&version.ReleasedAt)
	if errdb != nil {
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
			return dberror.ErrAlreadyExists.Msg("version already exists")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to create app version")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// SetCurrentAppVersion clears the current flag on all rows and sets it on the
// given one. The two steps run in a single transaction so there is no window
// where zero or two versions appear current.
func (hd *hallmarkDb) SetCurrentAppVersion(ctx context.Context, id uuid.UUID) apperrors.Error {
	tx, errdb := hd.conn().BeginTx(ctx, &sql.TxOptions{})
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to start transaction")
		return dberror.ErrDatabase.Err(errdb)
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Ctx(ctx).Error().Err(rollbackErr).Msg("failed to rollback transaction")
			}
		}
	}()

	_, txErr = tx.ExecContext(ctx, `
		UPDATE app_versions
		SET is_current = false
		WHERE is_current = true`)
	if txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to clear current version flags")
		return dberror.ErrDatabase.Err(txErr)
	}

	query := `
		UPDATE app_versions
		SET is_current = true
		WHERE id = $1
		RETURNING id`

	var returnedID uuid.UUID
	txErr = tx.QueryRowContext(ctx, query, id).Scan(&returnedID)
	if txErr != nil {
		if txErr == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("app version not found")
		}
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to set current version")
		return dberror.ErrDatabase.Err(txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(txErr)
	}
	return nil
}

// GetCurrentAppVersion returns the release currently flagged as current.
func (hd *hallmarkDb) GetCurrentAppVersion(ctx context.Context) (*models.AppVersion, apperrors.Error) {
	query := `
		SELECT id, version, COALESCE(notes, ''), hallmark_id, is_current, released_at
		FROM app_versions
		WHERE is_current = true`

	var v models.AppVersion
	errdb := hd.conn().QueryRowContext(ctx, query).Scan(&v.ID, &v.Version, &v.Notes,
		&v.HallmarkID, &v.IsCurrent, &v.ReleasedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("no current app version")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to get current app version")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return &v, nil
}
