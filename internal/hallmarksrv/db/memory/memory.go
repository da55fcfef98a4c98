// Package memory is an in-process store used by tests and by deployments
// without a database. It implements the same contract as the postgresql
// store, including the atomicity guarantees of ReserveSerial,
// RecordVerification, IncrementIssued and SetCurrentAppVersion.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/serial"
	"github.com/google/uuid"
)

type Store struct {
	mu        sync.Mutex
	hallmarks map[uuid.UUID]*models.Hallmark
	bySerial  map[string]uuid.UUID
	events    map[uuid.UUID][]*models.HallmarkEvent
	counters  map[string]int64
	profiles  map[string]*models.Profile
	byPrefix  map[string]string // hallmark prefix -> principal id
	versions  map[uuid.UUID]*models.AppVersion
	eventSeq  int64
}

func New() *Store {
	return &Store{
		hallmarks: make(map[uuid.UUID]*models.Hallmark),
		bySerial:  make(map[string]uuid.UUID),
		events:    make(map[uuid.UUID][]*models.HallmarkEvent),
		counters:  make(map[string]int64),
		profiles:  make(map[string]*models.Profile),
		byPrefix:  make(map[string]string),
		versions:  make(map[uuid.UUID]*models.AppVersion),
	}
}

// Close is a no-op; the store is shared, not pooled.
func (s *Store) Close(ctx context.Context) {}

func copyHallmark(h *models.Hallmark) *models.Hallmark {
	c := *h
	return &c
}

func copyProfile(p *models.Profile) *models.Profile {
	c := *p
	if p.AvatarData != nil {
		c.AvatarData = append([]byte(nil), p.AvatarData...)
	}
	return &c
}

// CreateHallmark stores a hallmark, rejecting duplicate serial numbers.
func (s *Store) CreateHallmark(ctx context.Context, h *models.Hallmark) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySerial[h.SerialNumber]; exists {
		return dberror.ErrAlreadyExists.Msg("serial number already exists")
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := time.Now().UTC()
	if h.IssuedAt.IsZero() {
		h.IssuedAt = now
	}
	h.UpdatedAt = now
	if h.Status == "" {
		h.Status = models.HallmarkStatusActive
	}
	s.hallmarks[h.ID] = copyHallmark(h)
	s.bySerial[h.SerialNumber] = h.ID
	return nil
}

func (s *Store) GetHallmark(ctx context.Context, id uuid.UUID) (*models.Hallmark, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hallmarks[id]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("hallmark not found")
	}
	return copyHallmark(h), nil
}

func (s *Store) GetHallmarkBySerial(ctx context.Context, serialNumber string) (*models.Hallmark, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySerial[serialNumber]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("hallmark not found")
	}
	return copyHallmark(s.hallmarks[id]), nil
}

func (s *Store) UpdateHallmarkStatus(ctx context.Context, id uuid.UUID, status models.HallmarkStatus) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hallmarks[id]
	if !ok {
		return dberror.ErrNotFound.Msg("hallmark not found")
	}
	h.Status = status
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SetHallmarkAnchor(ctx context.Context, id uuid.UUID, txRef string, slot int64, network string, confirmedAt time.Time) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hallmarks[id]
	if !ok {
		return dberror.ErrNotFound.Msg("hallmark not found")
	}
	h.LedgerTxRef = txRef
	h.LedgerSlot = slot
	h.LedgerNetwork = network
	t := confirmedAt
	h.LedgerConfirmedAt = &t
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) RecordVerification(ctx context.Context, id uuid.UUID, at time.Time) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hallmarks[id]
	if !ok {
		return dberror.ErrNotFound.Msg("hallmark not found")
	}
	h.VerificationCount++
	t := at
	h.LastVerifiedAt = &t
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func matchesFilter(h *models.Hallmark, filter models.HallmarkFilter) bool {
	if filter.Status != "" && h.Status != filter.Status {
		return false
	}
	if filter.AssetType != "" && h.AssetType != filter.AssetType {
		return false
	}
	if filter.PrincipalID != "" && h.PrincipalID != filter.PrincipalID {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(h.SerialNumber), q) &&
			!strings.Contains(strings.ToLower(h.AssetName), q) {
			return false
		}
	}
	return true
}

// ListHallmarks returns matching hallmarks, newest first.
func (s *Store) ListHallmarks(ctx context.Context, filter models.HallmarkFilter) ([]*models.Hallmark, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Hallmark
	for _, h := range s.hallmarks {
		if matchesFilter(h, filter) {
			out = append(out, copyHallmark(h))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].SerialNumber > out[j].SerialNumber
		}
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) CountHallmarks(ctx context.Context) (*models.HallmarkCounts, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := &models.HallmarkCounts{}
	for _, h := range s.hallmarks {
		counts.Total++
		switch h.Status {
		case models.HallmarkStatusActive:
			counts.Active++
		case models.HallmarkStatusRevoked:
			counts.Revoked++
		case models.HallmarkStatusExpired:
			counts.Expired++
		}
		if h.IsAnchored() {
			counts.Anchored++
		}
		if h.IsCompanyScoped {
			counts.CompanyScoped++
		}
	}
	return counts, nil
}

func (s *Store) AppendEvent(ctx context.Context, event *models.HallmarkEvent) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.eventSeq++
	e := *event
	s.events[event.HallmarkID] = append(s.events[event.HallmarkID], &e)
	return nil
}

func (s *Store) ListEvents(ctx context.Context, hallmarkID uuid.UUID) ([]*models.HallmarkEvent, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.HallmarkEvent
	for _, e := range s.events[hallmarkID] {
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

// ReserveSerial reserves the next value of a numbering space, seeding the
// counter by rescanning persisted serials with the given prefix when the
// space has no counter yet. Monotonic under concurrent callers.
func (s *Store) ReserveSerial(ctx context.Context, space string, prefix string) (int64, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.counters[space]
	if !ok {
		for sn := range s.bySerial {
			if !serial.HasPrefix(sn, prefix) {
				continue
			}
			if n, valid := serial.TrailingNumber(sn); valid && n > current {
				current = n
			}
		}
	}
	next := current + 1
	s.counters[space] = next
	return next, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.PrincipalID]; exists {
		return dberror.ErrAlreadyExists.Msg("profile or prefix already exists")
	}
	if _, exists := s.byPrefix[profile.HallmarkPrefix]; exists {
		return dberror.ErrAlreadyExists.Msg("profile or prefix already exists")
	}
	if profile.Tier == "" {
		profile.Tier = "starter"
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	s.profiles[profile.PrincipalID] = copyProfile(profile)
	s.byPrefix[profile.HallmarkPrefix] = profile.PrincipalID
	return nil
}

func (s *Store) GetProfile(ctx context.Context, principalID string) (*models.Profile, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[principalID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("profile not found")
	}
	return copyProfile(p), nil
}

func (s *Store) GetProfileByPrefix(ctx context.Context, prefix string) (*models.Profile, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	principalID, ok := s.byPrefix[prefix]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("profile not found")
	}
	return copyProfile(s.profiles[principalID]), nil
}

func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profile.PrincipalID]
	if !ok {
		return dberror.ErrNotFound.Msg("profile not found")
	}
	p.Tier = profile.Tier
	p.IsMinted = profile.IsMinted
	p.MintedAt = profile.MintedAt
	p.MintTxRef = profile.MintTxRef
	if profile.AvatarData != nil {
		p.AvatarData = append([]byte(nil), profile.AvatarData...)
	} else {
		p.AvatarData = nil
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) IncrementIssued(ctx context.Context, principalID string) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[principalID]
	if !ok {
		return dberror.ErrNotFound.Msg("profile not found")
	}
	p.DocumentsIssuedThisPeriod++
	p.TotalDocumentsIssued++
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ResetIssuancePeriods(ctx context.Context, at time.Time) (int, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := at
	for _, p := range s.profiles {
		p.DocumentsIssuedThisPeriod = 0
		p.PeriodResetAt = &t
		p.UpdatedAt = time.Now().UTC()
	}
	return len(s.profiles), nil
}

func (s *Store) CreateAppVersion(ctx context.Context, version *models.AppVersion) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.versions {
		if v.Version == version.Version {
			return dberror.ErrAlreadyExists.Msg("version already exists")
		}
	}
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	if version.ReleasedAt.IsZero() {
		version.ReleasedAt = time.Now().UTC()
	}
	c := *version
	s.versions[version.ID] = &c
	return nil
}

// SetCurrentAppVersion clears every current flag and sets the one on the
// given version, all under a single lock.
func (s *Store) SetCurrentAppVersion(ctx context.Context, id uuid.UUID) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.versions[id]
	if !ok {
		return dberror.ErrNotFound.Msg("app version not found")
	}
	for _, v := range s.versions {
		v.IsCurrent = false
	}
	target.IsCurrent = true
	return nil
}

func (s *Store) GetCurrentAppVersion(ctx context.Context) (*models.AppVersion, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.versions {
		if v.IsCurrent {
			c := *v
			return &c, nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no current app version")
}
