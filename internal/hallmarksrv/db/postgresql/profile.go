package postgresql

import (
	"context"
	"database/sql"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
)

const profileColumns = `
	principal_id, hallmark_prefix, tier, is_minted, minted_at,
	COALESCE(mint_tx_ref, ''), documents_issued_this_period,
	total_documents_issued, period_reset_at, avatar_data, created_at, updated_at`

// CreateProfile creates a principal hallmark profile.
func (hd *hallmarkDb) CreateProfile(ctx context.Context, profile *models.Profile) apperrors.Error {
	if profile.Tier == "" {
		profile.Tier = "starter"
	}

	query := `
		INSERT INTO hallmark_profiles (principal_id, hallmark_prefix, tier)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	errdb := hd.conn().QueryRowContext(ctx, query, profile.PrincipalID,
		profile.HallmarkPrefix, profile.Tier).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if errdb != nil {
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
			return dberror.ErrAlreadyExists.Msg("profile or prefix already exists")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to create profile")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.PrincipalID, &p.HallmarkPrefix, &p.Tier, &p.IsMinted,
		&p.MintedAt, &p.MintTxRef, &p.DocumentsIssuedThisPeriod,
		&p.TotalDocumentsIssued, &p.PeriodResetAt, &p.AvatarData,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile retrieves a profile by principal ID.
func (hd *hallmarkDb) GetProfile(ctx context.Context, principalID string) (*models.Profile, apperrors.Error) {
	query := `SELECT ` + profileColumns + ` FROM hallmark_profiles WHERE principal_id = $1`
	p, errdb := scanProfile(hd.conn().QueryRowContext(ctx, query, principalID))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("profile not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to get profile")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return p, nil
}

// GetProfileByPrefix retrieves a profile by its numbering prefix.
func (hd *hallmarkDb) GetProfileByPrefix(ctx context.Context, prefix string) (*models.Profile, apperrors.Error) {
	query := `SELECT ` + profileColumns + ` FROM hallmark_profiles WHERE hallmark_prefix = $1`
	p, errdb := scanProfile(hd.conn().QueryRowContext(ctx, query, prefix))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("profile not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to get profile by prefix")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return p, nil
}

// UpdateProfile writes the mutable profile fields.
func (hd *hallmarkDb) UpdateProfile(ctx context.Context, profile *models.Profile) apperrors.Error {
	query := `
		UPDATE hallmark_profiles
		SET tier = $1, is_minted = $2, minted_at = $3, mint_tx_ref = $4,
			avatar_data = $5, updated_at = NOW()
		WHERE principal_id = $6
		RETURNING principal_id`

	var returnedID string
	errdb := hd.conn().QueryRowContext(ctx, query, profile.Tier, profile.IsMinted,
		profile.MintedAt, profile.MintTxRef, profile.AvatarData, profile.PrincipalID).Scan(&returnedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("profile not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to update profile")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// IncrementIssued bumps both issuance counters in the database so concurrent
// issuers never lose an increment.
func (hd *hallmarkDb) IncrementIssued(ctx context.Context, principalID string) apperrors.Error {
	query := `
		UPDATE hallmark_profiles
		SET documents_issued_this_period = documents_issued_this_period + 1,
			total_documents_issued = total_documents_issued + 1,
			updated_at = NOW()
		WHERE principal_id = $1
		RETURNING principal_id`

	var returnedID string
	errdb := hd.conn().QueryRowContext(ctx, query, principalID).Scan(&returnedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("profile not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to increment issuance counters")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// ResetIssuancePeriods zeroes every profile's period counter and stamps the
// reset time. Returns the number of profiles touched.
func (hd *hallmarkDb) ResetIssuancePeriods(ctx context.Context, at time.Time) (int, apperrors.Error) {
	query := `
		UPDATE hallmark_profiles
		SET documents_issued_this_period = 0, period_reset_at = $1, updated_at = NOW()`

	result, errdb := hd.conn().ExecContext(ctx, query, at)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to reset issuance periods")
		return 0, dberror.ErrDatabase.Err(errdb)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}
