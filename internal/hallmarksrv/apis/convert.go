package apis

import (
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hallmarkmanager"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/ledger"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/quota"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/pkg/api"
	"github.com/jackc/pgtype"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func metadataMap(j pgtype.JSONB) map[string]string {
	if j.Status != pgtype.Present || len(j.Bytes) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(j.Bytes, &m); err != nil {
		return nil
	}
	return m
}

func hallmarkRsp(h *models.Hallmark) *api.HallmarkRsp {
	if h == nil {
		return nil
	}
	return &api.HallmarkRsp{
		SerialNumber:      h.SerialNumber,
		AssetType:         h.AssetType,
		AssetID:           h.AssetID,
		AssetName:         h.AssetName,
		PrincipalID:       h.PrincipalID,
		IssuedBy:          h.IssuedBy,
		IsCompanyScoped:   h.IsCompanyScoped,
		ContentHash:       h.ContentHash,
		Status:            string(h.Status),
		LedgerTxRef:       h.LedgerTxRef,
		LedgerSlot:        h.LedgerSlot,
		LedgerNetwork:     h.LedgerNetwork,
		LedgerConfirmedAt: h.LedgerConfirmedAt,
		VerificationCount: h.VerificationCount,
		LastVerifiedAt:    h.LastVerifiedAt,
		ExpiresAt:         h.ExpiresAt,
		Metadata:          metadataMap(h.Metadata),
		IssuedAt:          h.IssuedAt,
	}
}

func hallmarkListRsp(hs []*models.Hallmark) []*api.HallmarkRsp {
	out := make([]*api.HallmarkRsp, 0, len(hs))
	for _, h := range hs {
		out = append(out, hallmarkRsp(h))
	}
	return out
}

func ledgerCheckRsp(lv *ledger.VerifyResult) *api.LedgerCheckRsp {
	if lv == nil {
		return nil
	}
	return &api.LedgerCheckRsp{
		Exists:       lv.Exists,
		Confirmed:    lv.Confirmed,
		Slot:         lv.Slot,
		EmbeddedHash: lv.EmbeddedHash,
		HashMatches:  lv.HashMatches,
	}
}

func verifyRsp(serialNumber string, r *hallmarkmanager.VerificationResult) *api.VerifyHallmarkRsp {
	return &api.VerifyHallmarkRsp{
		SerialNumber: serialNumber,
		Verdict:      r.Verdict,
		Message:      r.Message,
		Hallmark:     hallmarkRsp(r.Hallmark),
		Ledger:       ledgerCheckRsp(r.Ledger),
	}
}

func eventListRsp(events []*models.HallmarkEvent) []*api.HallmarkEventRsp {
	out := make([]*api.HallmarkEventRsp, 0, len(events))
	for _, e := range events {
		out = append(out, &api.HallmarkEventRsp{
			EventID:     e.EventID,
			EventType:   string(e.EventType),
			RequesterIP: e.RequesterIP,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

func profileRsp(p *models.Profile) *api.ProfileRsp {
	decision := quota.Evaluate(p)
	return &api.ProfileRsp{
		PrincipalID:               p.PrincipalID,
		HallmarkPrefix:            p.HallmarkPrefix,
		Tier:                      p.Tier,
		IsMinted:                  p.IsMinted,
		MintedAt:                  p.MintedAt,
		MintTxRef:                 p.MintTxRef,
		DocumentsIssuedThisPeriod: p.DocumentsIssuedThisPeriod,
		TotalDocumentsIssued:      p.TotalDocumentsIssued,
		PeriodResetAt:             p.PeriodResetAt,
		HasAvatar:                 len(p.AvatarData) > 0,
		QuotaLimit:                decision.Limit,
		QuotaRemaining:            decision.Remaining,
		CreatedAt:                 p.CreatedAt,
	}
}

func appVersionRsp(av *models.AppVersion, h *models.Hallmark) *api.AppVersionRsp {
	return &api.AppVersionRsp{
		Version:    av.Version,
		Notes:      av.Notes,
		IsCurrent:  av.IsCurrent,
		ReleasedAt: av.ReleasedAt,
		Hallmark:   hallmarkRsp(h),
	}
}
