package db

import (
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/rs/zerolog/log"
)

// LoadScopedDBMiddleware attaches a store connection to the request context
// and returns it to the pool when the request completes.
func LoadScopedDBMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := ConnCtx(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("unable to obtain db connection")
			httpx.ErrApplicationError("unable to obtain db connection").Send(w)
			return
		}
		defer DB(ctx).Close(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
