package shared

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
	EnvLogLevel     = "IMSPOTIFY_LOG_LEVEL"
)

// ApplyEnv loads a .env file from the working directory (if any) and overlays set variables onto config.
func ApplyEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv(EnvClientID); ok && v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v, ok := os.LookupEnv(EnvClientSecret); ok && v != "" {
		config.Credentials.Spotify.ClientSecret = v
	}
	if v, ok := os.LookupEnv(EnvRedirectURI); ok && v != "" {
		config.Credentials.Spotify.RedirectURI = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		config.Log.Level = v
	}
}
