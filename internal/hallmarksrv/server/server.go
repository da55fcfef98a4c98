package server

import (
	"fmt"
	"net/http"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/logtrace"
	commonmiddleware "github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/middleware"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/apis"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/config"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hallmarkmanager"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/ledger"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type HallmarkServer struct {
	Router *chi.Mux
}

func CreateNewServer() (*HallmarkServer, error) {
	lc, err := ledger.New(&config.Config().Ledger)
	if err != nil {
		return nil, err
	}
	apis.Init(hallmarkmanager.New(lc))

	s := &HallmarkServer{}
	s.Router = chi.NewRouter()
	return s, nil
}

func (s *HallmarkServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Authorization"},
			MaxAge:         300,
		}))
	}
	s.Router.Route("/", s.mountResourceHandlers)
	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in hallmark router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

func (s *HallmarkServer) mountResourceHandlers(r chi.Router) {
	r.Use(db.LoadScopedDBMiddleware)
	r.Group(apis.Router)
	r.Get("/version", s.getVersion)
}

func (s *HallmarkServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &api.ServerVersionRsp{
		ServerVersion: "Brew & Board Hallmark Server: 0.1.0",
		APIVersion:    "v1",
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}
