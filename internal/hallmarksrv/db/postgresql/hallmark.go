package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
)

// Nullable text columns coalesce to the zero value so they scan into plain
// strings.
const hallmarkColumns = `
	id, serial_number, prefix, asset_type, COALESCE(asset_id, ''),
	COALESCE(asset_name, ''), COALESCE(principal_id, ''), issued_by,
	is_company_scoped, content_hash, status, COALESCE(ledger_tx_ref, ''),
	COALESCE(ledger_slot, 0), COALESCE(ledger_network, ''), ledger_confirmed_at,
	verification_count, last_verified_at, expires_at, metadata, issued_at, updated_at`

// CreateHallmark persists a newly minted hallmark. A serial number collision
// maps to ErrAlreadyExists; per the issuance contract it should be unreachable.
func (hd *hallmarkDb) CreateHallmark(ctx context.Context, h *models.Hallmark) apperrors.Error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Status == "" {
		h.Status = models.HallmarkStatusActive
	}

	query := `
		INSERT INTO hallmarks (id, serial_number, prefix, asset_type, asset_id, asset_name,
			principal_id, issued_by, is_company_scoped, content_hash, status, expires_at, metadata, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, issued_at, updated_at`

	row := hd.conn().QueryRowContext(ctx, query,
		h.ID, h.SerialNumber, h.Prefix, h.AssetType, h.AssetID, h.AssetName,
		h.PrincipalID, h.IssuedBy, h.IsCompanyScoped, h.ContentHash, h.Status,
		h.ExpiresAt, h.Metadata, h.IssuedAt)
	errdb := row.Scan(&h.ID, &h.IssuedAt, &h.UpdatedAt)
	if errdb != nil {
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
			return dberror.ErrAlreadyExists.Msg("serial number already exists")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to create hallmark")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func scanHallmark(row interface{ Scan(...any) error }) (*models.Hallmark, error) {
	var h models.Hallmark
	err := row.Scan(&h.ID, &h.SerialNumber, &h.Prefix, &h.AssetType, &h.AssetID,
		&h.AssetName, &h.PrincipalID, &h.IssuedBy, &h.IsCompanyScoped,
		&h.ContentHash, &h.Status, &h.LedgerTxRef, &h.LedgerSlot, &h.LedgerNetwork,
		&h.LedgerConfirmedAt, &h.VerificationCount, &h.LastVerifiedAt,
		&h.ExpiresAt, &h.Metadata, &h.IssuedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHallmark retrieves a hallmark by its ID.
func (hd *hallmarkDb) GetHallmark(ctx context.Context, id uuid.UUID) (*models.Hallmark, apperrors.Error) {
	query := `SELECT ` + hallmarkColumns + ` FROM hallmarks WHERE id = $1`
	h, errdb := scanHallmark(hd.conn().QueryRowContext(ctx, query, id))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("hallmark not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to get hallmark")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return h, nil
}

// GetHallmarkBySerial retrieves a hallmark by its serial number.
func (hd *hallmarkDb) GetHallmarkBySerial(ctx context.Context, serialNumber string) (*models.Hallmark, apperrors.Error) {
	query := `SELECT ` + hallmarkColumns + ` FROM hallmarks WHERE serial_number = $1`
	h, errdb := scanHallmark(hd.conn().QueryRowContext(ctx, query, serialNumber))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("hallmark not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to get hallmark by serial")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return h, nil
}

// UpdateHallmarkStatus sets the lifecycle status of a hallmark.
func (hd *hallmarkDb) UpdateHallmarkStatus(ctx context.Context, id uuid.UUID, status models.HallmarkStatus) apperrors.Error {
	query := `
		UPDATE hallmarks
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id`

	var returnedID uuid.UUID
	errdb := hd.conn().QueryRowContext(ctx, query, status, id).Scan(&returnedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("hallmark not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to update hallmark status")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// SetHallmarkAnchor records a confirmed ledger anchor on the hallmark.
func (hd *hallmarkDb) SetHallmarkAnchor(ctx context.Context, id uuid.UUID, txRef string, slot int64, network string, confirmedAt time.Time) apperrors.Error {
	query := `
		UPDATE hallmarks
		SET ledger_tx_ref = $1, ledger_slot = $2, ledger_network = $3,
			ledger_confirmed_at = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id`

	var returnedID uuid.UUID
	errdb := hd.conn().QueryRowContext(ctx, query, txRef, slot, network, confirmedAt, id).Scan(&returnedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("hallmark not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to set hallmark anchor")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// RecordVerification bumps the verification counter and stamps the read time.
// The increment happens in the database to stay correct under concurrent reads.
func (hd *hallmarkDb) RecordVerification(ctx context.Context, id uuid.UUID, at time.Time) apperrors.Error {
	query := `
		UPDATE hallmarks
		SET verification_count = verification_count + 1, last_verified_at = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id`

	var returnedID uuid.UUID
	errdb := hd.conn().QueryRowContext(ctx, query, at, id).Scan(&returnedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("hallmark not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to record verification")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// ListHallmarks returns hallmarks matching the filter, most recent first.
func (hd *hallmarkDb) ListHallmarks(ctx context.Context, filter models.HallmarkFilter) ([]*models.Hallmark, apperrors.Error) {
	query := `SELECT ` + hallmarkColumns + ` FROM hallmarks WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.AssetType != "" {
		args = append(args, filter.AssetType)
		query += fmt.Sprintf(` AND asset_type = $%d`, len(args))
	}
	if filter.PrincipalID != "" {
		args = append(args, filter.PrincipalID)
		query += fmt.Sprintf(` AND principal_id = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, filter.Query)
		query += fmt.Sprintf(` AND (serial_number ILIKE '%%' || $%d || '%%' OR asset_name ILIKE '%%' || $%d || '%%')`, len(args), len(args))
	}
	query += ` ORDER BY issued_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, errdb := hd.conn().QueryContext(ctx, query, args...)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list hallmarks")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var hallmarks []*models.Hallmark
	for rows.Next() {
		h, err := scanHallmark(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan hallmark")
			return nil, dberror.ErrDatabase.Err(err)
		}
		hallmarks = append(hallmarks, h)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return hallmarks, nil
}

// CountHallmarks aggregates totals for the stats surface.
func (hd *hallmarkDb) CountHallmarks(ctx context.Context) (*models.HallmarkCounts, apperrors.Error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'revoked'),
			COUNT(*) FILTER (WHERE status = 'expired'),
			COUNT(*) FILTER (WHERE ledger_tx_ref IS NOT NULL AND ledger_tx_ref <> ''),
			COUNT(*) FILTER (WHERE is_company_scoped)
		FROM hallmarks`

	var counts models.HallmarkCounts
	errdb := hd.conn().QueryRowContext(ctx, query).Scan(&counts.Total, &counts.Active,
		&counts.Revoked, &counts.Expired, &counts.Anchored, &counts.CompanyScoped)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to count hallmarks")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return &counts, nil
}
