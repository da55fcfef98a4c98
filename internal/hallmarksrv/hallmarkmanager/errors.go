package hallmarkmanager

import (
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
)

var (
	ErrHallmark apperrors.Error = apperrors.New("hallmark error").SetStatusCode(http.StatusInternalServerError)

	ErrHallmarkNotFound apperrors.Error = ErrHallmark.New("hallmark not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidHallmark  apperrors.Error = ErrHallmark.New("invalid hallmark request").SetStatusCode(http.StatusBadRequest)
	ErrProfileNotReady  apperrors.Error = ErrHallmark.New("profile is not minted").SetStatusCode(http.StatusForbidden)
	ErrQuotaExceeded    apperrors.Error = ErrHallmark.New("issuance quota exceeded").SetStatusCode(http.StatusTooManyRequests)

	// ErrDuplicateSerial means a freshly reserved serial collided on insert.
	// The reservation contract rules this out, so it indicates counter
	// corruption and is surfaced as a server fault rather than retried.
	ErrDuplicateSerial apperrors.Error = ErrHallmark.New("serial number collision").SetStatusCode(http.StatusInternalServerError)

	ErrVersionExists apperrors.Error = ErrHallmark.New("version already published").SetStatusCode(http.StatusConflict)
)
