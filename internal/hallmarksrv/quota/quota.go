// Package quota evaluates per-period issuance limits against a principal's
// profile. Limits come from configuration, keyed by tier; a limit of -1 means
// unbounded.
package quota

import (
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/config"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
)

const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"

	// Unlimited marks a tier without a per-period cap.
	Unlimited = -1
)

// Decision is the outcome of a quota check. Remaining is -1 when the tier is
// unbounded.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Tier      string `json:"tier"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

// Limit returns the per-period cap of a tier. Unknown tiers fall back to the
// starter cap so a mistyped tier never grants unlimited issuance.
func Limit(tier string) int {
	limits := config.Config().Quota.Limits
	if limit, ok := limits[tier]; ok {
		return limit
	}
	if limit, ok := limits[TierStarter]; ok {
		return limit
	}
	return 0
}

// Evaluate checks the profile's period counter against its tier cap.
func Evaluate(p *models.Profile) Decision {
	limit := Limit(p.Tier)
	d := Decision{
		Tier:  p.Tier,
		Limit: limit,
		Used:  p.DocumentsIssuedThisPeriod,
	}
	if limit == Unlimited {
		d.Allowed = true
		d.Remaining = Unlimited
		return d
	}
	d.Remaining = limit - p.DocumentsIssuedThisPeriod
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	d.Allowed = p.DocumentsIssuedThisPeriod < limit
	return d
}
