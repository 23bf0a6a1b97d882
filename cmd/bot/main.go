package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"frontierBot/internal/config"
	"frontierBot/internal/server"
	"frontierBot/internal/storage"
	"frontierBot/internal/telegram"
	"frontierBot/internal/telemetry"
)

func main() {
	cfg := config.Load()

	shutdown, err := telemetry.Setup(cfg.TraceStdout)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	log.Printf("db: opened sqlite at %s", cfg.DBPath)
	if err := storage.InitSchema(db); err != nil {
		log.Fatal(err)
	}
	log.Println("db: schema ensured (usage table)")

	tg, err := telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, db, telegram.Options{
		OpenAIKey:      cfg.OpenAIKey,
		Precision:      cfg.Precision,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("telegram: bot initialized, webhook target %s", cfg.WebhookPublicURL)
	if cfg.OpenAIKey == "" {
		log.Println("openai: OPENAI_API_KEY not set, /explain disabled")
	}

	api := &server.FrontierAPI{Precision: cfg.Precision, MaxUploadBytes: cfg.MaxUploadBytes}
	mux := server.NewHTTPMux(tg.WebhookHandler, api) // registers /telegram/webhook and /api/frontier
	addr := ":" + cfg.Port
	log.Println("http: listening on", addr)
	if err := server.ListenAndServe(addr, mux); err != nil {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
