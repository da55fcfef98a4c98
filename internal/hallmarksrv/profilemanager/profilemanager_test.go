package profilemanager

import (
	"context"
	"testing"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCtx(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.Init(ctx, "memory"))
	ctx, err := db.ConnCtx(ctx)
	require.NoError(t, err)
	return ctx
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "ALICE", NormalizePrefix("Alice"))
	assert.Equal(t, "BREWBOARD", NormalizePrefix("Brew & Board!"))
	assert.Equal(t, "CAF42", NormalizePrefix("café 42"))
	assert.Equal(t, "", NormalizePrefix("---"))
	// Long names are truncated.
	assert.Equal(t, "ABCDEFGHIJKL", NormalizePrefix("abcdefghijklmnop"))
}

func TestCreateProfile(t *testing.T) {
	ctx := setupCtx(t)

	p, err := CreateProfile(ctx, "alice", "Alice")
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE", p.HallmarkPrefix)
	assert.Equal(t, "starter", p.Tier)
	assert.False(t, p.IsMinted)

	// Creating again returns the existing profile.
	again, err := CreateProfile(ctx, "alice", "Completely Different")
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE", again.HallmarkPrefix)

	_, err = CreateProfile(ctx, "", "Nobody")
	assert.NotNil(t, err)
}

func TestCreateProfilePrefixCollision(t *testing.T) {
	ctx := setupCtx(t)

	p1, err := CreateProfile(ctx, "alice-1", "Alice")
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE", p1.HallmarkPrefix)

	// Same display name, different principal: suffix disambiguates.
	p2, err := CreateProfile(ctx, "alice-2", "Alice")
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE2", p2.HallmarkPrefix)

	p3, err := CreateProfile(ctx, "alice-3", "Alice")
	require.Nil(t, err)
	assert.Equal(t, "BB-ALICE3", p3.HallmarkPrefix)
}

func TestCreateProfileFallsBackToPrincipalId(t *testing.T) {
	ctx := setupCtx(t)

	p, err := CreateProfile(ctx, "user42", "***")
	require.Nil(t, err)
	assert.Equal(t, "BB-USER42", p.HallmarkPrefix)
}

func TestCompleteMinting(t *testing.T) {
	ctx := setupCtx(t)
	_, err := CreateProfile(ctx, "bob", "Bob")
	require.Nil(t, err)

	p, err := CompleteMinting(ctx, "bob", "mint-tx-1", "professional")
	require.Nil(t, err)
	assert.True(t, p.IsMinted)
	assert.NotNil(t, p.MintedAt)
	assert.Equal(t, "mint-tx-1", p.MintTxRef)
	assert.Equal(t, "professional", p.Tier)

	// Minting is one way; a second call changes nothing.
	again, err := CompleteMinting(ctx, "bob", "mint-tx-2", "starter")
	require.Nil(t, err)
	assert.Equal(t, "mint-tx-1", again.MintTxRef)
	assert.Equal(t, "professional", again.Tier)
	assert.Equal(t, p.MintedAt.Unix(), again.MintedAt.Unix())

	_, err = CompleteMinting(ctx, "nobody", "", "")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	ctx := setupCtx(t)
	_, err := CreateProfile(ctx, "carol", "Carol")
	require.Nil(t, err)

	avatar := []byte{0x89, 0x50, 0x4e, 0x47}
	p, err := UpdateAvatar(ctx, "carol", avatar)
	require.Nil(t, err)
	assert.Equal(t, avatar, p.AvatarData)

	stored, err := GetProfile(ctx, "carol")
	require.Nil(t, err)
	assert.Equal(t, avatar, stored.AvatarData)
}
