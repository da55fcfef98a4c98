package hallmarkmanager

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/ledger"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/profilemanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger satisfies ledger.Client without touching the network.
type fakeLedger struct {
	mu         sync.Mutex
	enabled    bool
	healthy    bool
	anchorErr  apperrors.Error
	anchored   map[string]string // txRef -> embedded hash
	fetchCalls int
	seq        int
}

func newFakeLedger(enabled bool) *fakeLedger {
	return &fakeLedger{enabled: enabled, healthy: true, anchored: make(map[string]string)}
}

func (f *fakeLedger) Enabled() bool   { return f.enabled }
func (f *fakeLedger) Network() string { return "devnet" }
func (f *fakeLedger) Health(ctx context.Context) bool {
	return f.healthy
}

func (f *fakeLedger) Anchor(ctx context.Context, contentHash string) (*ledger.AnchorResult, apperrors.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return nil, ledger.ErrLedgerDisabled
	}
	if f.anchorErr != nil {
		return nil, f.anchorErr
	}
	f.seq++
	txRef := fmt.Sprintf("tx-%d", f.seq)
	f.anchored[txRef] = contentHash
	return &ledger.AnchorResult{
		TxRef:       txRef,
		Slot:        int64(100 + f.seq),
		Network:     "devnet",
		ConfirmedAt: time.Now().UTC(),
	}, nil
}

func (f *fakeLedger) FetchAndVerify(ctx context.Context, txRef string, expectedHash string) (*ledger.VerifyResult, apperrors.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	hash, ok := f.anchored[txRef]
	if !ok {
		return &ledger.VerifyResult{Exists: false}, nil
	}
	matches := hash == expectedHash
	return &ledger.VerifyResult{
		Exists:       true,
		Confirmed:    true,
		EmbeddedHash: hash,
		HashMatches:  &matches,
	}, nil
}

func setupCtx(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.Init(ctx, "memory"))
	ctx, err := db.ConnCtx(ctx)
	require.NoError(t, err)
	return ctx
}

func mintedProfile(t *testing.T, ctx context.Context, principalID, displayName string) *models.Profile {
	t.Helper()
	_, err := profilemanager.CreateProfile(ctx, principalID, displayName)
	require.Nil(t, err)
	p, err := profilemanager.CompleteMinting(ctx, principalID, "mint-tx", "")
	require.Nil(t, err)
	return p
}

func TestIssueCompanyHallmark(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	h1, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document", AssetID: "doc-1"})
	require.Nil(t, err)
	assert.Equal(t, "BB-0000000001", h1.SerialNumber)
	assert.True(t, h1.IsCompanyScoped)
	assert.Len(t, h1.ContentHash, 64)
	assert.Equal(t, models.HallmarkStatusActive, h1.Status)
	assert.False(t, h1.IsAnchored())

	h2, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document", AssetID: "doc-2"})
	require.Nil(t, err)
	assert.Equal(t, "BB-0000000002", h2.SerialNumber)
	assert.NotEqual(t, h1.ContentHash, h2.ContentHash)

	events, err := m.ListEvents(ctx, h1.SerialNumber)
	require.Nil(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventIssued, events[0].EventType)

	_, err = m.IssueCompanyHallmark(ctx, &IssueRequest{})
	assert.NotNil(t, err)
}

func TestIssueCompanyHallmarkAnchorsInline(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(true)
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	assert.True(t, h.IsAnchored())
	assert.Equal(t, "devnet", h.LedgerNetwork)
	assert.NotNil(t, h.LedgerConfirmedAt)
	assert.Equal(t, h.ContentHash, lc.anchored[h.LedgerTxRef])

	// The anchor reference survives in the store, not just on the returned copy.
	stored, err := m.GetHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, h.LedgerTxRef, stored.LedgerTxRef)
}

func TestIssueSurvivesAnchorFailure(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(true)
	lc.anchorErr = ledger.ErrLedgerUnavailable
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	assert.False(t, h.IsAnchored())
	assert.Equal(t, models.HallmarkStatusActive, h.Status)
}

func TestConcurrentIssuanceUniqueSerials(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	const n = 50
	serials := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
			if err == nil {
				serials <- h.SerialNumber
			}
		}()
	}
	wg.Wait()
	close(serials)

	seen := make(map[string]bool)
	for s := range serials {
		assert.False(t, seen[s], "duplicate serial %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, n)
}

func TestIssuePrincipalHallmark(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))
	mintedProfile(t, ctx, "alice", "Alice")

	h1, err := m.IssuePrincipalHallmark(ctx, "alice", &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE-000001", h1.SerialNumber)
	assert.False(t, h1.IsCompanyScoped)
	assert.Equal(t, "alice", h1.PrincipalID)

	h2, err := m.IssuePrincipalHallmark(ctx, "alice", &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE-000002", h2.SerialNumber)

	p, perr := profilemanager.GetProfile(ctx, "alice")
	require.Nil(t, perr)
	assert.Equal(t, 2, p.DocumentsIssuedThisPeriod)
	assert.Equal(t, 2, p.TotalDocumentsIssued)
}

func TestIssuePrincipalHallmarkRequiresMintedProfile(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	_, err := m.IssuePrincipalHallmark(ctx, "ghost", &IssueRequest{AssetType: "document"})
	assert.NotNil(t, err)
	assert.ErrorIs(t, err, ErrProfileNotReady)

	_, perr := profilemanager.CreateProfile(ctx, "bob", "Bob")
	require.Nil(t, perr)
	_, err = m.IssuePrincipalHallmark(ctx, "bob", &IssueRequest{AssetType: "document"})
	assert.ErrorIs(t, err, ErrProfileNotReady)
}

func TestIssuePrincipalHallmarkQuota(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))
	mintedProfile(t, ctx, "carol", "Carol")

	// The starter tier allows 10 per period.
	for i := 0; i < 10; i++ {
		_, err := m.IssuePrincipalHallmark(ctx, "carol", &IssueRequest{AssetType: "document"})
		require.Nil(t, err)
	}
	_, err := m.IssuePrincipalHallmark(ctx, "carol", &IssueRequest{AssetType: "document"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// The allowance is available for client display after a refusal.
	d, qerr := m.CheckQuota(ctx, "carol")
	require.Nil(t, qerr)
	assert.False(t, d.Allowed)
	assert.Equal(t, "starter", d.Tier)
	assert.Equal(t, 10, d.Limit)
	assert.Equal(t, 10, d.Used)
	assert.Equal(t, 0, d.Remaining)

	_, qerr = m.CheckQuota(ctx, "nobody")
	assert.ErrorIs(t, qerr, ErrProfileNotReady)

	// A denied issuance must not consume quota.
	p, perr := profilemanager.GetProfile(ctx, "carol")
	require.Nil(t, perr)
	assert.Equal(t, 10, p.DocumentsIssuedThisPeriod)

	// Resetting the period reopens issuance.
	_, perr = profilemanager.ResetIssuancePeriods(ctx)
	require.Nil(t, perr)
	h, err := m.IssuePrincipalHallmark(ctx, "carol", &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	assert.Equal(t, "BB-CAROL-000011", h.SerialNumber)
}

func TestVerifyNotFound(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	r, err := m.VerifyHallmark(ctx, "BB-9999999999")
	require.Nil(t, err)
	assert.Equal(t, VerdictNotFound, r.Verdict)
	assert.Nil(t, r.Hallmark)
}

func TestVerifyUnanchoredSkipsLedger(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(false)
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)

	r, err := m.VerifyHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, VerdictPending, r.Verdict)
	assert.Equal(t, 0, lc.fetchCalls)
	assert.Equal(t, 1, r.Hallmark.VerificationCount)
	assert.NotNil(t, r.Hallmark.LastVerifiedAt)
}

func TestVerifyAnchoredPassed(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(true)
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	require.True(t, h.IsAnchored())

	r, err := m.VerifyHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, VerdictPassed, r.Verdict)
	require.NotNil(t, r.Ledger)
	assert.True(t, *r.Ledger.HashMatches)
}

func TestVerifyTamperedHashFails(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(true)
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)

	// The ledger remembers a different hash than the one stored.
	lc.anchored[h.LedgerTxRef] = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	r, err := m.VerifyHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, VerdictFailed, r.Verdict)
	require.NotNil(t, r.Ledger.HashMatches)
	assert.False(t, *r.Ledger.HashMatches)
}

func TestVerifyUnconfirmedAnchorTransactionPending(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(true)
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	delete(lc.anchored, h.LedgerTxRef)

	r, err := m.VerifyHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, VerdictPending, r.Verdict)
	require.NotNil(t, r.Ledger)
	assert.False(t, r.Ledger.Exists)
}

func TestVerifyRevoked(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	_, err = m.RevokeHallmark(ctx, h.SerialNumber, "issued in error")
	require.Nil(t, err)

	r, err := m.VerifyHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, VerdictRevoked, r.Verdict)

	// A revoked lookup never reaches integrity evaluation, so it does not
	// bump the verification counter.
	stored, err := m.GetHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, 0, stored.VerificationCount)
	assert.Nil(t, stored.LastVerifiedAt)
}

func TestVerifyExpiresLazily(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	future := time.Now().Add(50 * time.Millisecond)
	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document", ExpiresAt: &future})
	require.Nil(t, err)
	assert.Equal(t, models.HallmarkStatusActive, h.Status)

	time.Sleep(80 * time.Millisecond)
	r, err := m.VerifyHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, VerdictExpired, r.Verdict)

	// The flip is persisted.
	stored, err := m.GetHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, models.HallmarkStatusExpired, stored.Status)
}

func TestRevokeIdempotent(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)

	r1, err := m.RevokeHallmark(ctx, h.SerialNumber, "first")
	require.Nil(t, err)
	assert.Equal(t, models.HallmarkStatusRevoked, r1.Status)

	r2, err := m.RevokeHallmark(ctx, h.SerialNumber, "second")
	require.Nil(t, err)
	assert.Equal(t, models.HallmarkStatusRevoked, r2.Status)

	// Only the first revocation leaves an event.
	events, err := m.ListEvents(ctx, h.SerialNumber)
	require.Nil(t, err)
	revoked := 0
	for _, e := range events {
		if e.EventType == models.EventRevoked {
			revoked++
		}
	}
	assert.Equal(t, 1, revoked)

	_, err = m.RevokeHallmark(ctx, "BB-9999999999", "missing")
	assert.ErrorIs(t, err, ErrHallmarkNotFound)
}

func TestAnchorHallmarkLater(t *testing.T) {
	ctx := setupCtx(t)
	lc := newFakeLedger(true)
	lc.anchorErr = ledger.ErrLedgerUnavailable
	m := New(lc)

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)
	require.False(t, h.IsAnchored())

	// The ledger comes back and the hallmark is anchored on demand.
	lc.anchorErr = nil
	anchored, err := m.AnchorHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.True(t, anchored.IsAnchored())

	// Anchoring again is a no-op.
	again, err := m.AnchorHallmark(ctx, h.SerialNumber)
	require.Nil(t, err)
	assert.Equal(t, anchored.LedgerTxRef, again.LedgerTxRef)
}

func TestAnchorHallmarkDisabled(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	h, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document"})
	require.Nil(t, err)

	_, err = m.AnchorHallmark(ctx, h.SerialNumber)
	assert.ErrorIs(t, err, ledger.ErrLedgerDisabled)
}

func TestListAndStats(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))
	mintedProfile(t, ctx, "dave", "Dave")

	_, err := m.IssueCompanyHallmark(ctx, &IssueRequest{AssetType: "document", AssetName: "Q3 report"})
	require.Nil(t, err)
	h2, err := m.IssuePrincipalHallmark(ctx, "dave", &IssueRequest{AssetType: "invoice"})
	require.Nil(t, err)
	_, err = m.RevokeHallmark(ctx, h2.SerialNumber, "")
	require.Nil(t, err)

	all, err := m.ListHallmarks(ctx, models.HallmarkFilter{})
	require.Nil(t, err)
	assert.Len(t, all, 2)

	invoices, err := m.ListHallmarks(ctx, models.HallmarkFilter{AssetType: "invoice"})
	require.Nil(t, err)
	assert.Len(t, invoices, 1)

	byQuery, err := m.ListHallmarks(ctx, models.HallmarkFilter{Query: "q3"})
	require.Nil(t, err)
	assert.Len(t, byQuery, 1)

	stats, err := m.GetStats(ctx)
	require.Nil(t, err)
	assert.Equal(t, 2, stats.Counts.Total)
	assert.Equal(t, 1, stats.Counts.Active)
	assert.Equal(t, 1, stats.Counts.Revoked)
	assert.Equal(t, 1, stats.Counts.CompanyScoped)
	assert.Equal(t, "devnet", stats.LedgerNetwork)
	assert.False(t, stats.AnchoringEnabled)
}

func TestPublishAppVersion(t *testing.T) {
	ctx := setupCtx(t)
	m := New(newFakeLedger(false))

	av, h, err := m.PublishAppVersion(ctx, "1.4.0", "bug fixes")
	require.Nil(t, err)
	assert.True(t, av.IsCurrent)
	assert.Equal(t, AppVersionAssetType, h.AssetType)
	assert.Equal(t, "1.4.0", h.AssetID)
	assert.True(t, h.IsCompanyScoped)

	av2, _, err := m.PublishAppVersion(ctx, "1.5.0", "")
	require.Nil(t, err)
	assert.True(t, av2.IsCurrent)

	current, ch, err := m.CurrentAppVersion(ctx)
	require.Nil(t, err)
	assert.Equal(t, "1.5.0", current.Version)
	require.NotNil(t, ch)
	assert.Equal(t, "1.5.0", ch.AssetID)

	_, _, err = m.PublishAppVersion(ctx, "1.5.0", "")
	assert.ErrorIs(t, err, ErrVersionExists)
}
