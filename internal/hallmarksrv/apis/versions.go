package apis

import (
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/pkg/api"
	"github.com/rs/zerolog/log"
)

func publishVersion(r *http.Request) (*httpx.Response, error) {
	req := &api.PublishVersionReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	av, h, apperr := mgr.PublishAppVersion(r.Context(), req.Version, req.Notes)
	if apperr != nil {
		return nil, apperr
	}
	log.Ctx(r.Context()).Info().Str("version", av.Version).
		Str("serialNumber", h.SerialNumber).Msg("app version published")
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/versions/current",
		Response:   appVersionRsp(av, h),
	}, nil
}

func getCurrentVersion(r *http.Request) (*httpx.Response, error) {
	av, h, apperr := mgr.CurrentAppVersion(r.Context())
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   appVersionRsp(av, h),
	}, nil
}
