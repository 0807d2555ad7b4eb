// Package server exposes a thin HTTP surface over the core evaluator
// (SPEC_FULL.md D.4, a domain addition not present in spec.md): a
// POST /v1/evaluate endpoint accepting rules + document and returning a
// report.FileReport, plus /health and /metrics. Like cmd/ruleweave, this
// package is a wrapper around the core and carries none of its
// invariants.
//
// Grounded on the chi + cors JSON API shape in
// _examples/eclipse-basyx-basyx-go-components (cmd/discoveryservice and
// internal/common/endpoints.go's health-endpoint pattern).
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/ingest"
	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/record"
	"github.com/ruleweave/ruleweave/internal/report"
	"github.com/ruleweave/ruleweave/internal/telemetry"
)

// Config controls CORS and logging for the server.
type Config struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the chi router serving /v1/evaluate, /health, and
// /metrics.
func NewRouter(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	r.Use(c.Handler)
	r.Use(requestIDMiddleware)

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/v1/evaluate", handleEvaluate(cfg.Logger))

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"UP"}`))
}

// evaluateRequest is the POST /v1/evaluate request body: rule text plus a
// document, both as inline strings (spec §6.3's "UTF-8 text buffer of
// rules plus a file name" / "pre-parsed generic value", adapted to an HTTP
// body where the document arrives unparsed and this layer parses it).
type evaluateRequest struct {
	RulesFilename string `json:"rules_filename"`
	Rules         string `json:"rules"`
	DocumentName  string `json:"document_name"`
	Document      string `json:"document"`
}

type evaluateResponse struct {
	RequestID string              `json:"request_id"`
	Report    *report.FileReport  `json:"report"`
}

func handleEvaluate(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := requestIDFromContext(r.Context())

		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, requestID, http.StatusBadRequest, "malformed request body", err)
			return
		}
		if req.Rules == "" || req.Document == "" {
			writeError(w, logger, requestID, http.StatusBadRequest, "rules and document are both required", nil)
			return
		}
		if req.RulesFilename == "" {
			req.RulesFilename = "request.guard"
		}
		if req.DocumentName == "" {
			req.DocumentName = "request.yaml"
		}

		doc, err := ingest.ParseDocument(req.DocumentName, []byte(req.Document))
		if err != nil {
			writeError(w, logger, requestID, http.StatusBadRequest, "failed to parse document", err)
			return
		}

		file, err := lang.Parse(req.RulesFilename, req.Rules)
		if err != nil {
			writeError(w, logger, requestID, http.StatusBadRequest, "failed to parse rules", err)
			return
		}

		rec := record.New()
		start := time.Now()
		result := eval.Evaluate(file, pathvalue.Root(doc.Value), rec)
		telemetry.RecordFileEvaluation(time.Since(start), result.Status)
		for _, rr := range result.Rules {
			telemetry.RecordRuleEvaluation(rr.Status)
		}

		fr := report.Flatten(result, rec.Root())
		logger.Info("evaluation complete", "request_id", requestID, "status", fr.Status)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(evaluateResponse{RequestID: requestID, Report: fr})
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, requestID string, status int, msg string, err error) {
	logger.Error(msg, "request_id", requestID, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "request_id": requestID})
}

type contextKey string

const requestIDKey contextKey = "ruleweave_request_id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := withRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
