package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"frontierBot/internal/finance"
)

type Config struct {
	TelegramToken    string
	WebhookPublicURL string
	OpenAIKey        string // optional, enables /explain
	Port             string
	DBPath           string
	Precision        int
	MaxUploadBytes   int64
	TraceStdout      bool
}

func mustEnv(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		log.Printf("config: ignoring invalid %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

func envBool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("config: loaded .env")
	}
}

// LoadShared reads the settings that do not require bot credentials.
func LoadShared() Config {
	return Config{
		OpenAIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Port:           envOr("PORT", "9095"),
		DBPath:         envOr("DB_PATH", "/app/data/frontier.db"),
		Precision:      finance.ClampPrecision(int(envInt("FRONTIER_PRECISION", finance.DefaultPrecision))),
		MaxUploadBytes: envInt("FRONTIER_MAX_UPLOAD_BYTES", 1<<20),
		TraceStdout:    envBool("TRACE_STDOUT"),
	}
}

// Load reads the full bot configuration and exits when a required variable is missing.
func Load() Config {
	LoadDotEnv()
	cfg := LoadShared()
	cfg.TelegramToken = mustEnv("TELEGRAM_BOT_TOKEN")
	cfg.WebhookPublicURL = mustEnv("WEBHOOK_PUBLIC_URL")
	return cfg
}
