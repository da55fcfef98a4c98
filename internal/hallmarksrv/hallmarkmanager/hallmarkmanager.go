// Package hallmarkmanager implements issuance, verification, revocation and
// anchoring of hallmarks. It sits between the HTTP surface and the store,
// and owns the ledger client.
package hallmarkmanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/canonhash"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hmcommon"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/ledger"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/quota"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/serial"
	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"
)

type Manager struct {
	ledger ledger.Client
}

func New(lc ledger.Client) *Manager {
	return &Manager{ledger: lc}
}

// IssueRequest carries the caller-supplied fields of a new hallmark.
type IssueRequest struct {
	AssetType string
	AssetID   string
	AssetName string
	Metadata  map[string]string
	ExpiresAt *time.Time
}

func (r *IssueRequest) validate() apperrors.Error {
	if r.AssetType == "" {
		return ErrInvalidHallmark.Msg("assetType is required")
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(time.Now()) {
		return ErrInvalidHallmark.Msg("expiresAt must be in the future")
	}
	return nil
}

func metadataJSONB(m map[string]string) (pgtype.JSONB, apperrors.Error) {
	if len(m) == 0 {
		return pgtype.JSONB{Status: pgtype.Null}, nil
	}
	var j pgtype.JSONB
	if err := j.Set(m); err != nil {
		return j, ErrInvalidHallmark.Msg("invalid metadata").Err(err)
	}
	return j, nil
}

func eventData(m map[string]any) pgtype.JSONB {
	if len(m) == 0 {
		return pgtype.JSONB{Status: pgtype.Null}
	}
	var j pgtype.JSONB
	if err := j.Set(m); err != nil {
		return pgtype.JSONB{Status: pgtype.Null}
	}
	return j
}

// IssueCompanyHallmark issues a hallmark in the shared company numbering
// space. Anchoring is attempted inline and its failure never fails issuance;
// the hallmark stays unanchored and can be anchored later.
func (m *Manager) IssueCompanyHallmark(ctx context.Context, req *IssueRequest) (*models.Hallmark, apperrors.Error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	serialNumber, err := serial.NewIssuer(db.DB(ctx)).NextCompany(ctx)
	if err != nil {
		return nil, err
	}
	return m.issue(ctx, serialNumber, serial.CompanyPrefix, "", true, req)
}

// IssuePrincipalHallmark issues a hallmark in the principal's own numbering
// space, subject to the minted-profile and tier quota requirements.
func (m *Manager) IssuePrincipalHallmark(ctx context.Context, principalID string, req *IssueRequest) (*models.Hallmark, apperrors.Error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if principalID == "" {
		return nil, ErrInvalidHallmark.Msg("principalId is required")
	}

	store := db.DB(ctx)
	profile, err := store.GetProfile(ctx, principalID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrProfileNotReady.Msg("no profile for principal")
		}
		return nil, err
	}
	if !profile.IsMinted {
		return nil, ErrProfileNotReady
	}
	decision := quota.Evaluate(profile)
	if !decision.Allowed {
		return nil, ErrQuotaExceeded.Msg(
			fmt.Sprintf("tier %s allows %d hallmarks per period, %d used", decision.Tier, decision.Limit, decision.Used))
	}

	serialNumber, err := serial.NewIssuer(store).NextPrincipal(ctx, profile.HallmarkPrefix)
	if err != nil {
		return nil, err
	}
	h, err := m.issue(ctx, serialNumber, profile.HallmarkPrefix, principalID, false, req)
	if err != nil {
		return nil, err
	}
	if err := store.IncrementIssued(ctx, principalID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("principalId", principalID).
			Msg("failed to increment issuance counter")
	}
	return h, nil
}

// CheckQuota reports the issuance allowance for a principal without
// consuming it. Callers use it to surface limit and remaining alongside a
// quota refusal.
func (m *Manager) CheckQuota(ctx context.Context, principalID string) (*quota.Decision, apperrors.Error) {
	profile, err := db.DB(ctx).GetProfile(ctx, principalID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrProfileNotReady.Msg("no profile for principal")
		}
		return nil, err
	}
	decision := quota.Evaluate(profile)
	return &decision, nil
}

func (m *Manager) issue(ctx context.Context, serialNumber, prefix, principalID string, companyScoped bool, req *IssueRequest) (*models.Hallmark, apperrors.Error) {
	issuedAt := time.Now().UTC()
	contentHash, err := canonhash.Hash(canonhash.NewPayload(
		serialNumber, req.AssetType, req.AssetID, principalID, issuedAt, req.Metadata))
	if err != nil {
		return nil, err
	}
	metadata, err := metadataJSONB(req.Metadata)
	if err != nil {
		return nil, err
	}

	issuedBy := hmcommon.UserIdFromContext(ctx)
	if issuedBy == "" {
		issuedBy = "system"
	}
	h := &models.Hallmark{
		SerialNumber:    serialNumber,
		Prefix:          prefix,
		AssetType:       req.AssetType,
		AssetID:         req.AssetID,
		AssetName:       req.AssetName,
		PrincipalID:     principalID,
		IssuedBy:        issuedBy,
		IsCompanyScoped: companyScoped,
		ContentHash:     contentHash,
		Status:          models.HallmarkStatusActive,
		ExpiresAt:       req.ExpiresAt,
		Metadata:        metadata,
		IssuedAt:        issuedAt,
	}

	store := db.DB(ctx)
	if err := store.CreateHallmark(ctx, h); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			// The reservation already serialized this space, so a collision
			// here means the counter lost state.
			log.Ctx(ctx).Error().Str("serialNumber", serialNumber).
				Msg("reserved serial already persisted")
			return nil, ErrDuplicateSerial
		}
		return nil, err
	}

	m.appendEvent(ctx, h, models.EventIssued, map[string]any{
		"serialNumber": serialNumber,
		"contentHash":  contentHash,
	})
	m.tryAnchor(ctx, h)
	return h, nil
}

// tryAnchor anchors the hallmark inline, best effort. The hallmark is already
// persisted; on any ledger failure it simply stays unanchored.
func (m *Manager) tryAnchor(ctx context.Context, h *models.Hallmark) {
	if m.ledger == nil || !m.ledger.Enabled() {
		return
	}
	result, err := m.ledger.Anchor(ctx, h.ContentHash)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("serialNumber", h.SerialNumber).
			Msg("inline anchoring failed, hallmark left unanchored")
		return
	}
	if err := db.DB(ctx).SetHallmarkAnchor(ctx, h.ID, result.TxRef, result.Slot, result.Network, result.ConfirmedAt); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("serialNumber", h.SerialNumber).
			Msg("failed to persist anchor reference")
		return
	}
	h.LedgerTxRef = result.TxRef
	h.LedgerSlot = result.Slot
	h.LedgerNetwork = result.Network
	h.LedgerConfirmedAt = &result.ConfirmedAt
}

func (m *Manager) appendEvent(ctx context.Context, h *models.Hallmark, eventType models.HallmarkEventType, data map[string]any) {
	event := &models.HallmarkEvent{
		EventID:    hmcommon.NewEventId(),
		HallmarkID: h.ID,
		EventType:  eventType,
		Data:       eventData(data),
	}
	if requester := hmcommon.RequesterFromContext(ctx); requester != nil {
		event.RequesterIP = requester.IP
		event.RequesterUA = requester.UserAgent
	}
	if err := db.DB(ctx).AppendEvent(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("hallmarkId", h.ID.String()).
			Msg("failed to append hallmark event")
	}
}

// Verification verdicts.
const (
	VerdictPassed   = "passed"
	VerdictFailed   = "failed"
	VerdictPending  = "pending"
	VerdictRevoked  = "revoked"
	VerdictExpired  = "expired"
	VerdictNotFound = "not_found"
)

// VerificationResult is always produced, whatever the outcome; a hallmark
// that cannot be verified is a verdict, not an error.
type VerificationResult struct {
	Verdict  string
	Message  string
	Hallmark *models.Hallmark
	Ledger   *ledger.VerifyResult
}

// VerifyHallmark checks a serial number against the store and, when the
// hallmark is anchored, against the ledger. Verifications of active hallmarks
// bump the verification counter; every lookup of an existing hallmark lands
// on the audit trail.
func (m *Manager) VerifyHallmark(ctx context.Context, serialNumber string) (*VerificationResult, apperrors.Error) {
	store := db.DB(ctx)
	h, err := store.GetHallmarkBySerial(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return &VerificationResult{
				Verdict: VerdictNotFound,
				Message: "no hallmark with this serial number",
			}, nil
		}
		return nil, err
	}

	// Expiry is applied lazily; the stored status flips on first observation.
	now := time.Now().UTC()
	if h.Status == models.HallmarkStatusActive && h.ExpiresAt != nil && h.ExpiresAt.Before(now) {
		if err := store.UpdateHallmarkStatus(ctx, h.ID, models.HallmarkStatusExpired); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("serialNumber", serialNumber).
				Msg("failed to expire hallmark")
		} else {
			h.Status = models.HallmarkStatusExpired
		}
	}

	result := m.verdict(ctx, h)

	// Only verifications that reach integrity evaluation count; revoked and
	// expired lookups leave the counter alone.
	switch result.Verdict {
	case VerdictPending, VerdictPassed, VerdictFailed:
		if err := store.RecordVerification(ctx, h.ID, now); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("serialNumber", serialNumber).
				Msg("failed to record verification")
		} else {
			h.VerificationCount++
			h.LastVerifiedAt = &now
		}
	}

	m.appendEvent(ctx, h, models.EventVerified, map[string]any{"verdict": result.Verdict})
	return result, nil
}

func (m *Manager) verdict(ctx context.Context, h *models.Hallmark) *VerificationResult {
	result := &VerificationResult{Hallmark: h}

	switch h.Status {
	case models.HallmarkStatusRevoked:
		result.Verdict = VerdictRevoked
		result.Message = "hallmark has been revoked"
		return result
	case models.HallmarkStatusExpired:
		result.Verdict = VerdictExpired
		result.Message = "hallmark has expired"
		return result
	}

	if !h.IsAnchored() {
		result.Verdict = VerdictPending
		result.Message = "hallmark is valid but not yet anchored on the ledger"
		return result
	}

	if m.ledger == nil {
		result.Verdict = VerdictPending
		result.Message = "ledger unavailable, try again later"
		return result
	}
	lv, err := m.ledger.FetchAndVerify(ctx, h.LedgerTxRef, h.ContentHash)
	if err != nil {
		result.Verdict = VerdictPending
		result.Message = "ledger unavailable, try again later"
		return result
	}
	result.Ledger = lv

	switch {
	case !lv.Exists:
		// The transaction may simply not be confirmed yet. Only a hash
		// mismatch is allowed to override the local record.
		result.Verdict = VerdictPending
		result.Message = "anchor transaction not yet confirmed on the ledger"
	case lv.HashMatches == nil:
		result.Verdict = VerdictPassed
		result.Message = "anchor transaction confirmed (memo unreadable)"
	case *lv.HashMatches:
		result.Verdict = VerdictPassed
		result.Message = "content hash matches the ledger anchor"
	default:
		result.Verdict = VerdictFailed
		result.Message = "content hash does not match the ledger anchor"
	}
	return result
}

// RevokeHallmark marks a hallmark revoked. Revoking an already revoked
// hallmark is a no-op.
func (m *Manager) RevokeHallmark(ctx context.Context, serialNumber string, reason string) (*models.Hallmark, apperrors.Error) {
	store := db.DB(ctx)
	h, err := store.GetHallmarkBySerial(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrHallmarkNotFound
		}
		return nil, err
	}
	if h.Status == models.HallmarkStatusRevoked {
		return h, nil
	}
	if err := store.UpdateHallmarkStatus(ctx, h.ID, models.HallmarkStatusRevoked); err != nil {
		return nil, err
	}
	h.Status = models.HallmarkStatusRevoked
	m.appendEvent(ctx, h, models.EventRevoked, map[string]any{"reason": reason})
	return h, nil
}

// AnchorHallmark anchors a hallmark that was issued while the ledger was
// unreachable or disabled. Already anchored hallmarks are returned unchanged.
func (m *Manager) AnchorHallmark(ctx context.Context, serialNumber string) (*models.Hallmark, apperrors.Error) {
	store := db.DB(ctx)
	h, err := store.GetHallmarkBySerial(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrHallmarkNotFound
		}
		return nil, err
	}
	if h.IsAnchored() {
		return h, nil
	}
	if h.Status != models.HallmarkStatusActive {
		return nil, ErrInvalidHallmark.Msg("only active hallmarks can be anchored")
	}
	if m.ledger == nil || !m.ledger.Enabled() {
		return nil, ledger.ErrLedgerDisabled
	}

	result, lerr := m.ledger.Anchor(ctx, h.ContentHash)
	if lerr != nil {
		return nil, lerr
	}
	if err := store.SetHallmarkAnchor(ctx, h.ID, result.TxRef, result.Slot, result.Network, result.ConfirmedAt); err != nil {
		return nil, err
	}
	h.LedgerTxRef = result.TxRef
	h.LedgerSlot = result.Slot
	h.LedgerNetwork = result.Network
	h.LedgerConfirmedAt = &result.ConfirmedAt
	return h, nil
}

// GetHallmark returns a hallmark by serial number without counting a
// verification.
func (m *Manager) GetHallmark(ctx context.Context, serialNumber string) (*models.Hallmark, apperrors.Error) {
	h, err := db.DB(ctx).GetHallmarkBySerial(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrHallmarkNotFound
		}
		return nil, err
	}
	return h, nil
}

func (m *Manager) ListHallmarks(ctx context.Context, filter models.HallmarkFilter) ([]*models.Hallmark, apperrors.Error) {
	return db.DB(ctx).ListHallmarks(ctx, filter)
}

func (m *Manager) ListEvents(ctx context.Context, serialNumber string) ([]*models.HallmarkEvent, apperrors.Error) {
	h, err := m.GetHallmark(ctx, serialNumber)
	if err != nil {
		return nil, err
	}
	return db.DB(ctx).ListEvents(ctx, h.ID)
}

// Stats aggregates store counts with the current ledger status.
type Stats struct {
	Counts           *models.HallmarkCounts `json:"counts"`
	LedgerNetwork    string                 `json:"ledgerNetwork"`
	AnchoringEnabled bool                   `json:"anchoringEnabled"`
	LedgerHealthy    bool                   `json:"ledgerHealthy"`
}

func (m *Manager) GetStats(ctx context.Context) (*Stats, apperrors.Error) {
	counts, err := db.DB(ctx).CountHallmarks(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Counts: counts}
	if m.ledger != nil {
		stats.LedgerNetwork = m.ledger.Network()
		stats.AnchoringEnabled = m.ledger.Enabled()
		stats.LedgerHealthy = m.ledger.Health(ctx)
	}
	return stats, nil
}
