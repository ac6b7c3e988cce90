// Package server exposes URL checks, history and credential management over
// HTTP, with a WebSocket stream for incremental check results.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/raysh454/safelink/internal/app"
	"github.com/raysh454/safelink/internal/history"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/model"
)

const maxBodyBytes = 64 << 10

// Server is the HTTP + WebSocket API surface for safelink.
type Server struct {
	cfg      Config
	app      *app.Application
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: nil application")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.App.Logger
	}
	if cfg.AllowedOrigin == "" && cfg.App.Config != nil {
		cfg.AllowedOrigin = cfg.App.Config.AllowedOrigin
	}

	s := &Server{
		cfg:    cfg,
		app:    cfg.App,
		router: chi.NewRouter(),
		logger: logger.With(logging.Field{Key: "component", Value: "server"}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.originAllowed}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/checks", s.optionsHandler("POST"))
	r.Options("/history", s.optionsHandler("GET, DELETE"))
	r.Options("/credential", s.optionsHandler("GET, PUT, DELETE"))
	r.Options("/thresholds", s.optionsHandler("GET"))

	r.Post("/checks", s.handleCheck)

	r.Get("/history", s.handleListHistory)
	r.Delete("/history", s.handleClearHistory)

	r.Get("/credential", s.handleGetCredential)
	r.Put("/credential", s.handleSetCredential)
	r.Delete("/credential", s.handleClearCredential)

	r.Get("/thresholds", s.handleThresholds)

	// WebSocket for incremental check results
	r.Get("/ws/checks", s.handleChecksWS)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.app.Metrics.Handler())
}

// originAllowed accepts requests without an Origin header, same-origin
// requests and the configured AllowedOrigin. "*" accepts every origin.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	switch {
	case origin == "":
		return true
	case s.cfg.AllowedOrigin == "*", origin == s.cfg.AllowedOrigin:
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// corsMiddleware rejects foreign origins before routing; simple
// cross-origin POSTs arrive without a preflight.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.originAllowed(r) {
			s.logger.Warn("rejected cross-origin request",
				logging.Field{Key: "origin", Value: r.Header.Get("Origin")},
				logging.Field{Key: "path", Value: r.URL.Path})
			writeError(w, http.StatusForbidden, "origin not allowed", "forbidden_origin")
			return
		}

		if s.cfg.AllowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
			if s.cfg.AllowedOrigin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AllowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Methods", methods)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	// Credential bodies carry the API key and are never logged.
	if r.Body != nil && r.Method == http.MethodPost && r.URL.Path == "/checks" {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes)); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           otelhttp.NewHandler(s, "safelink"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Kind: kind})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// --- Handlers ---

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "bad_request")
		return
	}

	res, err := s.app.Checker.Check(r.Context(), req.URL)
	status, resp, errResp := checkOutcome(res, err)
	if errResp != nil {
		writeJSON(w, status, errResp)
		return
	}
	writeJSON(w, status, resp)
}

// checkOutcome maps a Check return to an HTTP status and payload.
func checkOutcome(res *model.FinalResult, err error) (int, *CheckResponse, *ErrorResponse) {
	switch {
	case err == nil:
		return http.StatusOK, &CheckResponse{FinalResult: res}, nil
	case errors.Is(err, app.ErrCheckInProgress):
		return http.StatusConflict, nil, &ErrorResponse{Error: err.Error(), Kind: "busy"}
	case app.ValidationKind(err) != "":
		return http.StatusBadRequest, nil, &ErrorResponse{Error: err.Error(), Kind: app.ValidationKind(err)}
	case errors.Is(err, history.ErrPersistence) && res != nil:
		return http.StatusOK, &CheckResponse{FinalResult: res, HistoryWarning: err.Error()}, nil
	default:
		return http.StatusInternalServerError, nil, &ErrorResponse{Error: err.Error()}
	}
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.app.History.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "persistence")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.app.History.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "persistence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	_, ok, err := s.app.Credentials.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "persistence")
		return
	}
	writeJSON(w, http.StatusOK, CredentialStatus{Set: ok})
}

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "bad_request")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "api_key is required", "bad_request")
		return
	}
	if err := s.app.Credentials.Set(r.Context(), req.APIKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "persistence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Credentials.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "persistence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThresholdsResponse{
		Safe:    model.SafeThreshold,
		Caution: model.CautionThreshold,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WebSockets

// handleChecksWS runs one check per received CheckRequest and streams its
// events back until the client disconnects.
func (s *Server) handleChecksWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	logger := s.logger.With(logging.Field{Key: "session", Value: session})
	logger.Info("websocket session opened")

	ctx := r.Context()
	for {
		var req CheckRequest
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				_ = conn.WriteJSON(app.CheckEvent{Type: app.CheckEventError, Error: "invalid JSON", Kind: "bad_request"})
				continue
			}
			logger.Info("websocket session closed", logging.Err(err))
			return
		}

		var writeErr error
		_, _ = s.app.Checker.CheckObserved(ctx, req.URL, func(ev app.CheckEvent) {
			if writeErr != nil {
				return
			}
			writeErr = conn.WriteJSON(ev)
		})
		if writeErr != nil {
			logger.Warn("websocket write failed", logging.Err(writeErr))
			return
		}
	}
}
