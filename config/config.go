package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// JwtKey is the signing key for auth tokens, loaded from the environment.
var JwtKey []byte

// LoadEnv reads the optional .env file and initializes process-wide settings.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET environment variable is not set")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}

// UploadDir returns the base directory for submission uploads.
func UploadDir() string {
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		return v
	}
	return "./uploads/submissions"
}
