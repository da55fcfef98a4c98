package apis

import (
	"net"
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/auth"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hallmarkmanager"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hmcommon"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var mgr *hallmarkmanager.Manager
var validate = validator.New()

// Init wires the manager used by the handlers. Must run before Router.
func Init(m *hallmarkmanager.Manager) {
	mgr = m
}

// publicHandlers serve reads and verification; no token required so anyone
// holding a serial number can verify it.
var publicHandlers = []httpx.ResponseHandlerParam{
	{
		Method:  http.MethodGet,
		Path:    "/hallmarks",
		Handler: listHallmarks,
	},
	{
		Method:  http.MethodGet,
		Path:    "/hallmarks/{serialNumber}",
		Handler: getHallmark,
	},
	{
		Method:  http.MethodGet,
		Path:    "/hallmarks/{serialNumber}/verify",
		Handler: verifyHallmark,
	},
	{
		Method:  http.MethodGet,
		Path:    "/hallmarks/{serialNumber}/events",
		Handler: listHallmarkEvents,
	},
	{
		Method:  http.MethodGet,
		Path:    "/stats",
		Handler: getStats,
	},
	{
		Method:  http.MethodGet,
		Path:    "/versions/current",
		Handler: getCurrentVersion,
	},
}

var protectedHandlers = []httpx.ResponseHandlerParam{
	{
		Method:  http.MethodPost,
		Path:    "/hallmarks/company",
		Handler: issueCompanyHallmark,
	},
	{
		Method:  http.MethodPost,
		Path:    "/hallmarks",
		Handler: issuePrincipalHallmark,
	},
	{
		Method:  http.MethodPost,
		Path:    "/hallmarks/{serialNumber}/revoke",
		Handler: revokeHallmark,
	},
	{
		Method:  http.MethodPost,
		Path:    "/hallmarks/{serialNumber}/anchor",
		Handler: anchorHallmark,
	},
	{
		Method:  http.MethodPost,
		Path:    "/profiles",
		Handler: createProfile,
	},
	{
		Method:  http.MethodGet,
		Path:    "/profiles/{principalId}",
		Handler: getProfile,
	},
	{
		Method:  http.MethodPost,
		Path:    "/profiles/{principalId}/mint",
		Handler: mintProfile,
	},
	{
		Method:  http.MethodPut,
		Path:    "/profiles/{principalId}/avatar",
		Handler: updateAvatar,
	},
	{
		Method:  http.MethodPost,
		Path:    "/quota/reset",
		Handler: resetQuotaPeriods,
	},
	{
		Method:  http.MethodPost,
		Path:    "/versions",
		Handler: publishVersion,
	},
}

func Router(r chi.Router) {
	r.Use(loadRequesterContext)
	for _, handler := range publicHandlers {
		r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
	r.Group(func(g chi.Router) {
		g.Use(auth.Middleware)
		for _, handler := range protectedHandlers {
			g.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
}

// loadRequesterContext records the caller address and agent for the audit
// trail.
func loadRequesterContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := hmcommon.SetRequesterInContext(r.Context(), &hmcommon.Requester{
			IP:        ip,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
