package hallmarkmanager

import (
	"context"
	"errors"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/rs/zerolog/log"
)

// AppVersionAssetType is the asset type of release hallmarks.
const AppVersionAssetType = "app_release"

// PublishAppVersion hallmarks a release and makes it the current version.
// The release gets a company-scoped hallmark whose asset id is the version
// string, so the ledger anchor covers the release identity.
func (m *Manager) PublishAppVersion(ctx context.Context, version string, notes string) (*models.AppVersion, *models.Hallmark, apperrors.Error) {
	if version == "" {
		return nil, nil, ErrInvalidHallmark.Msg("version is required")
	}

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{
		AssetType: AppVersionAssetType,
		AssetID:   version,
		AssetName: "Brew & Board " + version,
	})
	if err != nil {
		return nil, nil, err
	}

	store := db.DB(ctx)
	av := &models.AppVersion{
		Version:    version,
		Notes:      notes,
		HallmarkID: h.ID,
	}
	if err := store.CreateAppVersion(ctx, av); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			// The release hallmark stays on the trail even though the version
			// record was rejected.
			log.Ctx(ctx).Warn().Str("version", version).Str("serialNumber", h.SerialNumber).
				Msg("duplicate version, hallmark issued but not published")
			return nil, nil, ErrVersionExists
		}
		return nil, nil, err
	}
	if err := store.SetCurrentAppVersion(ctx, av.ID); err != nil {
		return nil, nil, err
	}
	av.IsCurrent = true
	return av, h, nil
}

// CurrentAppVersion returns the published current release with its hallmark.
func (m *Manager) CurrentAppVersion(ctx context.Context) (*models.AppVersion, *models.Hallmark, apperrors.Error) {
	store := db.DB(ctx)
	av, err := store.GetCurrentAppVersion(ctx)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, nil, ErrHallmarkNotFound.Msg("no current app version")
		}
		return nil, nil, err
	}
	h, err := store.GetHallmark(ctx, av.HallmarkID)
	if err != nil {
		// The version is still served; a dangling hallmark reference must be
		// visible to operators.
		log.Ctx(ctx).Error().Err(err).Str("version", av.Version).
			Str("hallmarkId", av.HallmarkID.String()).
			Msg("current version references a missing hallmark")
		return av, nil, nil
	}
	return av, h, nil
}
