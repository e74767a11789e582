package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/api"
	"github.com/edunest/school-back/internal/config"
	"github.com/edunest/school-back/internal/cron"
	"github.com/edunest/school-back/internal/db"
	"github.com/edunest/school-back/internal/email"
	"github.com/edunest/school-back/internal/importer"
	"github.com/edunest/school-back/internal/logger"
	"github.com/edunest/school-back/internal/notify"
	"github.com/edunest/school-back/internal/realtime"
	"github.com/edunest/school-back/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system env")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Init(cfg.DBUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to create upload dir")
	}

	st := store.New(conn)
	sink := activity.NewSink(conn)
	hub := realtime.NewHub()
	mail := email.NewService(cfg.SendgridAPIKey, cfg.EmailFrom)
	dispatcher := notify.NewDispatcher(hub, st, mail)
	imp := importer.New(st)

	server := api.NewServer(cfg, st, imp, dispatcher, sink, hub.Handle, func() error {
		return db.Ping(conn)
	})
	r := api.SetupRouter(server, st)

	cron.StartJobs(cfg, sink)

	log.Info().Str("addr", cfg.ServerAddr).Msg("server running")
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
