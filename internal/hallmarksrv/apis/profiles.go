package apis

import (
	"encoding/base64"
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/profilemanager"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func createProfile(r *http.Request) (*httpx.Response, error) {
	req := &api.CreateProfileReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	p, apperr := profilemanager.CreateProfile(r.Context(), req.PrincipalID, req.DisplayName)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/profiles/" + p.PrincipalID,
		Response:   profileRsp(p),
	}, nil
}

func getProfile(r *http.Request) (*httpx.Response, error) {
	principalID := chi.URLParam(r, "principalId")
	if principalID == "" {
		return nil, httpx.ErrInvalidPrincipal()
	}
	p, apperr := profilemanager.GetProfile(r.Context(), principalID)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   profileRsp(p),
	}, nil
}

func mintProfile(r *http.Request) (*httpx.Response, error) {
	principalID := chi.URLParam(r, "principalId")
	if principalID == "" {
		return nil, httpx.ErrInvalidPrincipal()
	}
	req := &api.MintProfileReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}

	p, apperr := profilemanager.CompleteMinting(r.Context(), principalID, req.MintTxRef, req.Tier)
	if apperr != nil {
		return nil, apperr
	}
	log.Ctx(r.Context()).Info().Str("principalId", principalID).Msg("profile mint completed")
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   profileRsp(p),
	}, nil
}

func updateAvatar(r *http.Request) (*httpx.Response, error) {
	principalID := chi.URLParam(r, "principalId")
	if principalID == "" {
		return nil, httpx.ErrInvalidPrincipal()
	}
	req := &api.UpdateAvatarReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}
	avatar, err := base64.StdEncoding.DecodeString(req.AvatarData)
	if err != nil {
		return nil, httpx.ErrInvalidRequest("avatarData must be base64")
	}

	p, apperr := profilemanager.UpdateAvatar(r.Context(), principalID, avatar)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   profileRsp(p),
	}, nil
}

func resetQuotaPeriods(r *http.Request) (*httpx.Response, error) {
	count, apperr := profilemanager.ResetIssuancePeriods(r.Context())
	if apperr != nil {
		return nil, apperr
	}
	log.Ctx(r.Context()).Info().Int("profiles", count).Msg("issuance periods reset")
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &api.ResetPeriodsRsp{ProfilesReset: count},
	}, nil
}
