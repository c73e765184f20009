package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment   string
	HTTPPort      string
	DatabasePath  string
	FrontendDir   string
	VideoDir      string
	ThumbnailDir  string
	JWTSecret     string
	AdminPassword string // initial admin password, used only when seeding a fresh database
	NotifyURL     string // optional shoutrrr URL for admin alerts
	FFmpegBinary  string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:   getEnv("RH_ENV", "development"),
		HTTPPort:      getEnv("RH_HTTP_PORT", "8080"),
		DatabasePath:  getEnv("RH_DB_PATH", filepath.Join("data", "reelhaven.db")),
		FrontendDir:   getEnv("RH_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "frontend", "dist"))),
		VideoDir:      getEnv("RH_VIDEO_DIR", filepath.Join("uploads", "videos")),
		ThumbnailDir:  getEnv("RH_THUMBNAIL_DIR", filepath.Join("uploads", "thumbnails")),
		JWTSecret:     getEnv("RH_JWT_SECRET", "dev-secret-change-me"),
		AdminPassword: getEnv("RH_ADMIN_PASSWORD", "admin123"),
		NotifyURL:     os.Getenv("RH_NOTIFY_URL"),
		FFmpegBinary:  getEnv("RH_FFMPEG_BINARY", "ffmpeg"),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}
	for _, dir := range []string{cfg.VideoDir, cfg.ThumbnailDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Config{}, fmt.Errorf("ensure upload directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
