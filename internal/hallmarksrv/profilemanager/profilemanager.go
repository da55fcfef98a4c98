// Package profilemanager manages principal hallmark profiles: prefix
// assignment, minting state, tier and avatar.
package profilemanager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrProfile apperrors.Error = apperrors.New("profile error").SetStatusCode(http.StatusInternalServerError)

	ErrProfileNotFound apperrors.Error = ErrProfile.New("profile not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidProfile  apperrors.Error = ErrProfile.New("invalid profile request").SetStatusCode(http.StatusBadRequest)
)

const (
	prefixRoot      = "BB"
	maxNameSegment  = 12
	maxPrefixProbes = 100
)

// NormalizePrefix derives a numbering prefix segment from a display name:
// uppercased, non-alphanumerics stripped, truncated.
func NormalizePrefix(displayName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(displayName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= maxNameSegment {
				break
			}
		}
	}
	return b.String()
}

// CreateProfile creates a profile for a principal, assigning a unique
// numbering prefix derived from the display name. Calling it again for an
// existing principal returns the existing profile.
func CreateProfile(ctx context.Context, principalID string, displayName string) (*models.Profile, apperrors.Error) {
	if principalID == "" {
		return nil, ErrInvalidProfile.Msg("principalId is required")
	}

	store := db.DB(ctx)
	if existing, err := store.GetProfile(ctx, principalID); err == nil {
		return existing, nil
	} else if !errors.Is(err, dberror.ErrNotFound) {
		return nil, err
	}

	segment := NormalizePrefix(displayName)
	if segment == "" {
		segment = NormalizePrefix(principalID)
	}
	if segment == "" {
		return nil, ErrInvalidProfile.Msg("cannot derive a prefix from the display name")
	}

	// Prefix collisions get a numeric suffix: BB-ALICE, BB-ALICE2, ...
	base := prefixRoot + "-" + segment
	prefix := base
	for probe := 2; ; probe++ {
		_, err := store.GetProfileByPrefix(ctx, prefix)
		if err != nil {
			if errors.Is(err, dberror.ErrNotFound) {
				break
			}
			return nil, err
		}
		if probe > maxPrefixProbes {
			return nil, ErrProfile.Msg("unable to assign a unique prefix")
		}
		prefix = fmt.Sprintf("%s%d", base, probe)
	}

	profile := &models.Profile{
		PrincipalID:    principalID,
		HallmarkPrefix: prefix,
	}
	if err := store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			// Lost a concurrent creation race; the winner's profile stands.
			return store.GetProfile(ctx, principalID)
		}
		return nil, err
	}
	log.Ctx(ctx).Info().Str("principalId", principalID).Str("prefix", prefix).
		Msg("profile created")
	return profile, nil
}

// GetProfile returns the profile of a principal.
func GetProfile(ctx context.Context, principalID string) (*models.Profile, apperrors.Error) {
	p, err := db.DB(ctx).GetProfile(ctx, principalID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// CompleteMinting marks the profile minted. Minting is one way; repeating it
// is a no-op that returns the profile unchanged. An optional transaction
// reference and tier may be recorded at mint time.
func CompleteMinting(ctx context.Context, principalID string, mintTxRef string, tier string) (*models.Profile, apperrors.Error) {
	store := db.DB(ctx)
	p, err := GetProfile(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if p.IsMinted {
		return p, nil
	}

	now := time.Now().UTC()
	p.IsMinted = true
	p.MintedAt = &now
	if mintTxRef != "" {
		p.MintTxRef = mintTxRef
	}
	if tier != "" {
		p.Tier = tier
	}
	if err := store.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("principalId", principalID).Str("tier", p.Tier).
		Msg("profile minted")
	return p, nil
}

// UpdateAvatar replaces the profile's avatar image bytes.
func UpdateAvatar(ctx context.Context, principalID string, avatar []byte) (*models.Profile, apperrors.Error) {
	p, err := GetProfile(ctx, principalID)
	if err != nil {
		return nil, err
	}
	p.AvatarData = avatar
	if err := db.DB(ctx).UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ResetIssuancePeriods zeroes every profile's period counter. Returns the
// number of profiles reset.
func ResetIssuancePeriods(ctx context.Context) (int, apperrors.Error) {
	return db.DB(ctx).ResetIssuancePeriods(ctx, time.Now().UTC())
}
