package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/logtrace"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/config"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/server"
	"github.com/rs/zerolog/log"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	configFile *string
}

func main() {

	slog := log.With().Str("state", "init").Logger()
	// Parse command line flags
	opt := parseFlags()

	slog.Info().Str("config_file", *opt.configFile).Msg("loading config file")
	// load config file
	if err := config.LoadConfig(*opt.configFile); err != nil {
		slog.Error().Str("config_file", *opt.configFile).Err(err).Msg("unable to load config file")
		os.Exit(1)
	}
	if config.Config().ServerPort == "" {
		slog.Error().Msg("server port not defined")
		os.Exit(1)
	}
	if err := db.Init(context.Background(), config.Config().DB.Type); err != nil {
		slog.Error().Err(err).Msg("unable to initialize store")
		os.Exit(1)
	}
	slog.Info().Str("db_type", config.Config().DB.Type).
		Str("ledger_network", config.Config().Ledger.Network).Msg("store and ledger configured")

	s, err := server.CreateNewServer()
	if err != nil {
		slog.Error().Err(err).Msg("Unable to create server")
		os.Exit(1)
	}
	s.MountHandlers()
	http.ListenAndServe(":"+config.Config().ServerPort, s.Router)
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	opt.configFile = flag.String("config", config.DefaultConfigFile, "Path to the config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
