package db

import (
	"context"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dbmanager"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/memory"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/postgresql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HallmarkManager is the persistence boundary of the hallmark ledger. The
// operations marked atomic must be implemented without a read-modify-write
// window: ReserveSerial is the numbering-space reservation of §4.2 and
// SetCurrentAppVersion is the clear-all-then-set-one flag flip.
type HallmarkManager interface {
	// Hallmark
	CreateHallmark(ctx context.Context, h *models.Hallmark) apperrors.Error
	GetHallmark(ctx context.Context, id uuid.UUID) (*models.Hallmark, apperrors.Error)
	GetHallmarkBySerial(ctx context.Context, serialNumber string) (*models.Hallmark, apperrors.Error)
	UpdateHallmarkStatus(ctx context.Context, id uuid.UUID, status models.HallmarkStatus) apperrors.Error
	SetHallmarkAnchor(ctx context.Context, id uuid.UUID, txRef string, slot int64, network string, confirmedAt time.Time) apperrors.Error
	RecordVerification(ctx context.Context, id uuid.UUID, at time.Time) apperrors.Error // atomic increment
	ListHallmarks(ctx context.Context, filter models.HallmarkFilter) ([]*models.Hallmark, apperrors.Error)
	CountHallmarks(ctx context.Context) (*models.HallmarkCounts, apperrors.Error)

	// HallmarkEvent (append-only)
	AppendEvent(ctx context.Context, event *models.HallmarkEvent) apperrors.Error
	ListEvents(ctx context.Context, hallmarkID uuid.UUID) ([]*models.HallmarkEvent, apperrors.Error)

	// Serial numbering. Returns the next value of the space, seeding the
	// counter by rescanning persisted serials with the given prefix when the
	// space has no counter row yet.
	ReserveSerial(ctx context.Context, space string, prefix string) (int64, apperrors.Error)

	// Profile
	CreateProfile(ctx context.Context, profile *models.Profile) apperrors.Error
	GetProfile(ctx context.Context, principalID string) (*models.Profile, apperrors.Error)
	GetProfileByPrefix(ctx context.Context, prefix string) (*models.Profile, apperrors.Error)
	UpdateProfile(ctx context.Context, profile *models.Profile) apperrors.Error
	IncrementIssued(ctx context.Context, principalID string) apperrors.Error // atomic increment
	ResetIssuancePeriods(ctx context.Context, at time.Time) (int, apperrors.Error)

	// AppVersion
	CreateAppVersion(ctx context.Context, version *models.AppVersion) apperrors.Error
	SetCurrentAppVersion(ctx context.Context, id uuid.UUID) apperrors.Error // atomic flag flip
	GetCurrentAppVersion(ctx context.Context) (*models.AppVersion, apperrors.Error)
}

type ConnectionManager interface {
	// Close returns the connection back to the pool.
	Close(ctx context.Context)
}

type DB_ interface {
	HallmarkManager
	ConnectionManager
}

var pool dbmanager.Pool
var memStore *memory.Store

// Init selects the store implementation. dbtype is "postgresql" or "memory".
func Init(ctx context.Context, dbtype string) error {
	switch dbtype {
	case "postgresql":
		p, err := dbmanager.NewPostgresqlDb()
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to create PostgreSQL DB")
			return err
		}
		pool = p
		memStore = nil
		return nil
	case "memory":
		memStore = memory.New()
		pool = nil
		return nil
	}
	return apperrors.New("unknown db type: " + dbtype)
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "BrewboardHallmarkDb"

// ConnCtx attaches a store connection to the context. The caller owns the
// connection and must Close it via DB(ctx).Close.
func ConnCtx(ctx context.Context) (context.Context, error) {
	if memStore != nil {
		return context.WithValue(ctx, ctxDbKey, DB_(memStore)), nil
	}
	if pool == nil {
		return ctx, apperrors.New("db not initialized")
	}
	conn, err := pool.Conn(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
		return ctx, err
	}
	return context.WithValue(ctx, ctxDbKey, DB_(postgresql.NewHallmarkDb(conn))), nil
}

// DB returns the store bound to the connection carried by the context.
func DB(ctx context.Context) DB_ {
	if store, ok := ctx.Value(ctxDbKey).(DB_); ok {
		return store
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
