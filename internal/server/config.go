package server

import (
	"github.com/raysh454/safelink/internal/app"
	"github.com/raysh454/safelink/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// App provides the wired services. Required.
	App *app.Application

	// Logger defaults to App.Logger.
	Logger logging.Logger

	// AllowedOrigin is the one cross-origin caller accepted, sent back as
	// Access-Control-Allow-Origin. Empty falls back to App.Config, and when
	// that is empty too only same-origin and non-browser clients get through.
	// "*" opens the API to every origin.
	AllowedOrigin string
}
