package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveSerialSequence(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := int64(1); i <= 3; i++ {
		v, err := s.ReserveSerial(ctx, "company", "BB")
		require.Nil(t, err)
		assert.Equal(t, i, v)
	}

	// Spaces are independent.
	v, err := s.ReserveSerial(ctx, "principal:BB-ALICE", "BB-ALICE")
	require.Nil(t, err)
	assert.Equal(t, int64(1), v)
}

func TestReserveSerialSeedsFromPersistedSerials(t *testing.T) {
	ctx := context.Background()
	s := New()

	// Hallmarks exist but the counter does not, as after a restart.
	require.Nil(t, s.CreateHallmark(ctx, &models.Hallmark{
		SerialNumber: "BB-0000000005", Prefix: "BB", AssetType: "document", IssuedBy: "system",
	}))
	require.Nil(t, s.CreateHallmark(ctx, &models.Hallmark{
		SerialNumber: "BB-ALICE-000009", Prefix: "BB-ALICE", AssetType: "document", IssuedBy: "system",
	}))

	v, err := s.ReserveSerial(ctx, "company", "BB")
	require.Nil(t, err)
	assert.Equal(t, int64(6), v)

	// Principal serials do not leak into the company seed and vice versa.
	v, err = s.ReserveSerial(ctx, "principal:BB-ALICE", "BB-ALICE")
	require.Nil(t, err)
	assert.Equal(t, int64(10), v)
}

func TestReserveSerialConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	const n = 100
	values := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.ReserveSerial(ctx, "company", "BB")
			if err == nil {
				values <- v
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	for v := range values {
		assert.False(t, seen[v], "duplicate value %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}

func TestDuplicateSerialRejected(t *testing.T) {
	ctx := context.Background()
	s := New()

	h := &models.Hallmark{SerialNumber: "BB-0000000001", Prefix: "BB", AssetType: "document", IssuedBy: "system"}
	require.Nil(t, s.CreateHallmark(ctx, h))

	dup := &models.Hallmark{SerialNumber: "BB-0000000001", Prefix: "BB", AssetType: "document", IssuedBy: "system"}
	err := s.CreateHallmark(ctx, dup)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)
}

func TestReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()

	h := &models.Hallmark{SerialNumber: "BB-0000000001", Prefix: "BB", AssetType: "document", IssuedBy: "system"}
	require.Nil(t, s.CreateHallmark(ctx, h))

	got, err := s.GetHallmarkBySerial(ctx, "BB-0000000001")
	require.Nil(t, err)
	got.Status = models.HallmarkStatusRevoked

	// Mutating the returned copy must not alter the stored row.
	again, err := s.GetHallmarkBySerial(ctx, "BB-0000000001")
	require.Nil(t, err)
	assert.Equal(t, models.HallmarkStatusActive, again.Status)
}

func TestRecordVerificationIncrements(t *testing.T) {
	ctx := context.Background()
	s := New()

	h := &models.Hallmark{SerialNumber: "BB-0000000001", Prefix: "BB", AssetType: "document", IssuedBy: "system"}
	require.Nil(t, s.CreateHallmark(ctx, h))

	at := time.Now().UTC()
	require.Nil(t, s.RecordVerification(ctx, h.ID, at))
	require.Nil(t, s.RecordVerification(ctx, h.ID, at))

	got, err := s.GetHallmark(ctx, h.ID)
	require.Nil(t, err)
	assert.Equal(t, 2, got.VerificationCount)
	require.NotNil(t, got.LastVerifiedAt)
}

func TestSetCurrentAppVersionExclusive(t *testing.T) {
	ctx := context.Background()
	s := New()

	h := &models.Hallmark{SerialNumber: "BB-0000000001", Prefix: "BB", AssetType: "app_release", IssuedBy: "system"}
	require.Nil(t, s.CreateHallmark(ctx, h))

	v1 := &models.AppVersion{Version: "1.0.0", HallmarkID: h.ID}
	v2 := &models.AppVersion{Version: "1.1.0", HallmarkID: h.ID}
	require.Nil(t, s.CreateAppVersion(ctx, v1))
	require.Nil(t, s.CreateAppVersion(ctx, v2))

	require.Nil(t, s.SetCurrentAppVersion(ctx, v1.ID))
	require.Nil(t, s.SetCurrentAppVersion(ctx, v2.ID))

	current, err := s.GetCurrentAppVersion(ctx)
	require.Nil(t, err)
	assert.Equal(t, "1.1.0", current.Version)

	// Exactly one version carries the flag.
	flagged := 0
	for _, v := range s.versions {
		if v.IsCurrent {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
}
