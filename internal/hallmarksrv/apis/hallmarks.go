package apis

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hallmarkmanager"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hmcommon"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func issueRequestFromAPI(req *api.IssueHallmarkReq) *hallmarkmanager.IssueRequest {
	return &hallmarkmanager.IssueRequest{
		AssetType: req.AssetType,
		AssetID:   req.AssetID,
		AssetName: req.AssetName,
		Metadata:  req.Metadata,
		ExpiresAt: req.ExpiresAt,
	}
}

func issueCompanyHallmark(r *http.Request) (*httpx.Response, error) {
	req := &api.IssueHallmarkReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	h, apperr := mgr.IssueCompanyHallmark(r.Context(), issueRequestFromAPI(req))
	if apperr != nil {
		return nil, apperr
	}
	log.Ctx(r.Context()).Info().Str("serialNumber", h.SerialNumber).Msg("company hallmark issued")
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/hallmarks/" + h.SerialNumber,
		Response:   hallmarkRsp(h),
	}, nil
}

func issuePrincipalHallmark(r *http.Request) (*httpx.Response, error) {
	req := &api.IssueHallmarkReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	principalID := req.PrincipalID
	if principalID == "" {
		principalID = hmcommon.PrincipalIdFromContext(r.Context())
	}
	if principalID == "" {
		return nil, httpx.ErrInvalidPrincipal()
	}

	h, apperr := mgr.IssuePrincipalHallmark(r.Context(), principalID, issueRequestFromAPI(req))
	if apperr != nil {
		if errors.Is(apperr, hallmarkmanager.ErrQuotaExceeded) {
			return quotaExceededRsp(r.Context(), principalID, apperr)
		}
		return nil, apperr
	}
	log.Ctx(r.Context()).Info().Str("serialNumber", h.SerialNumber).
		Str("principalId", principalID).Msg("principal hallmark issued")
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/hallmarks/" + h.SerialNumber,
		Response:   hallmarkRsp(h),
	}, nil
}

// quotaExceededRsp turns a quota refusal into a 429 body carrying the tier
// allowance for client display.
func quotaExceededRsp(ctx context.Context, principalID string, qerr error) (*httpx.Response, error) {
	decision, apperr := mgr.CheckQuota(ctx, principalID)
	if apperr != nil {
		return nil, qerr
	}
	return &httpx.Response{
		StatusCode: http.StatusTooManyRequests,
		Response: api.QuotaExceededRsp{
			Error:     qerr.Error(),
			Tier:      decision.Tier,
			Limit:     decision.Limit,
			Used:      decision.Used,
			Remaining: decision.Remaining,
		},
	}, nil
}

func getHallmark(r *http.Request) (*httpx.Response, error) {
	serialNumber := chi.URLParam(r, "serialNumber")
	if serialNumber == "" {
		return nil, httpx.ErrInvalidSerial()
	}
	h, apperr := mgr.GetHallmark(r.Context(), serialNumber)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   hallmarkRsp(h),
	}, nil
}

func verifyHallmark(r *http.Request) (*httpx.Response, error) {
	serialNumber := chi.URLParam(r, "serialNumber")
	if serialNumber == "" {
		return nil, httpx.ErrInvalidSerial()
	}
	result, apperr := mgr.VerifyHallmark(r.Context(), serialNumber)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   verifyRsp(serialNumber, result),
	}, nil
}

func listHallmarkEvents(r *http.Request) (*httpx.Response, error) {
	serialNumber := chi.URLParam(r, "serialNumber")
	if serialNumber == "" {
		return nil, httpx.ErrInvalidSerial()
	}
	events, apperr := mgr.ListEvents(r.Context(), serialNumber)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   eventListRsp(events),
	}, nil
}

func listHallmarks(r *http.Request) (*httpx.Response, error) {
	q := r.URL.Query()
	filter := models.HallmarkFilter{
		Status:      models.HallmarkStatus(q.Get("status")),
		AssetType:   q.Get("assetType"),
		PrincipalID: q.Get("principalId"),
		Query:       q.Get("q"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return nil, httpx.ErrInvalidRequest("limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	hallmarks, apperr := mgr.ListHallmarks(r.Context(), filter)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   hallmarkListRsp(hallmarks),
	}, nil
}

func revokeHallmark(r *http.Request) (*httpx.Response, error) {
	serialNumber := chi.URLParam(r, "serialNumber")
	if serialNumber == "" {
		return nil, httpx.ErrInvalidSerial()
	}
	req := &api.RevokeHallmarkReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	h, apperr := mgr.RevokeHallmark(r.Context(), serialNumber, req.Reason)
	if apperr != nil {
		return nil, apperr
	}
	log.Ctx(r.Context()).Info().Str("serialNumber", serialNumber).Msg("hallmark revoked")
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   hallmarkRsp(h),
	}, nil
}

func anchorHallmark(r *http.Request) (*httpx.Response, error) {
	serialNumber := chi.URLParam(r, "serialNumber")
	if serialNumber == "" {
		return nil, httpx.ErrInvalidSerial()
	}
	h, apperr := mgr.AnchorHallmark(r.Context(), serialNumber)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   hallmarkRsp(h),
	}, nil
}

func getStats(r *http.Request) (*httpx.Response, error) {
	stats, apperr := mgr.GetStats(r.Context())
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   stats,
	}, nil
}
