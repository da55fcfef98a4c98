package quota

import (
	"testing"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateStarter(t *testing.T) {
	p := &models.Profile{Tier: TierStarter, DocumentsIssuedThisPeriod: 0}
	d := Evaluate(p)
	assert.True(t, d.Allowed)
	assert.Equal(t, 10, d.Limit)
	assert.Equal(t, 10, d.Remaining)

	p.DocumentsIssuedThisPeriod = 9
	d = Evaluate(p)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	p.DocumentsIssuedThisPeriod = 10
	d = Evaluate(p)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestEvaluateEnterpriseUnbounded(t *testing.T) {
	p := &models.Profile{Tier: TierEnterprise, DocumentsIssuedThisPeriod: 100000}
	d := Evaluate(p)
	assert.True(t, d.Allowed)
	assert.Equal(t, Unlimited, d.Limit)
	assert.Equal(t, Unlimited, d.Remaining)
}

func TestEvaluateUnknownTierFallsBackToStarter(t *testing.T) {
	p := &models.Profile{Tier: "platinum", DocumentsIssuedThisPeriod: 10}
	d := Evaluate(p)
	assert.False(t, d.Allowed)
	assert.Equal(t, 10, d.Limit)
}

func TestEvaluateOverCounted(t *testing.T) {
	// A counter past the cap must not produce a negative remaining.
	p := &models.Profile{Tier: TierStarter, DocumentsIssuedThisPeriod: 15}
	d := Evaluate(p)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}
