package ledger

import (
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
)

var (
	ErrLedger apperrors.Error = apperrors.New("ledger error").SetStatusCode(http.StatusBadGateway)

	ErrLedgerUnavailable  apperrors.Error = ErrLedger.New("ledger unavailable")
	ErrLedgerDisabled     apperrors.Error = ErrLedger.New("anchoring is not configured").SetStatusCode(http.StatusServiceUnavailable)
	ErrNotConfirmed       apperrors.Error = ErrLedger.New("transaction not confirmed in time").SetStatusCode(http.StatusGatewayTimeout)
	ErrInvalidOperatorKey apperrors.Error = ErrLedger.New("invalid operator key").SetStatusCode(http.StatusInternalServerError)
)
