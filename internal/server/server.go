package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/iwvelando/loan-gauge/internal/cache"
	"github.com/iwvelando/loan-gauge/internal/chart"
	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/iwvelando/loan-gauge/pkg/datetime"
	"github.com/iwvelando/loan-gauge/pkg/output"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options configures the HTTP handler. Zero values fall back to defaults.
type Options struct {
	MaxRequestSize int64
	MaxTermYears   int
	Version        string
	AllowedOrigins []string
	Defaults       amortization.LoanTerms
	Cache          cache.Cache
}

type handler struct {
	logger    *zap.Logger
	generator *amortization.Generator
	opts      Options
}

// scheduleRequest is the POST body of /api/schedule. Omitted fields take the
// default loan's values.
type scheduleRequest struct {
	Principal          *float64 `json:"principal"`
	AnnualInterestRate *float64 `json:"annualInterestRate"`
	TermYears          *float64 `json:"termYears"`
	StartMonth         string   `json:"startMonth"`
}

type scheduleResponse struct {
	output.Document
	Duration string `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewHandler constructs the HTTP handler that serves the dashboard and schedule API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = constants.DefaultMaxRequestSizeBytes
	}
	if opts.MaxTermYears <= 0 {
		opts.MaxTermYears = constants.DefaultMaxTermYears
	}
	opts.Version = strings.TrimSpace(opts.Version)
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Defaults.Validate() != nil {
		opts.Defaults = amortization.DefaultLoanTerms()
	}

	h := &handler{
		logger:    logger,
		generator: amortization.NewGenerator(logger),
		opts:      opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/schedule", h.handleScheduleQuery)
		r.Post("/schedule", h.handleScheduleBody)
		r.Get("/schedule.csv", h.handleScheduleCSV)
		r.Get("/chart", h.handleChart)
		r.Get("/version", h.handleVersion)
	})
	r.Get("/healthz", h.handleHealth)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

func (h *handler) handleScheduleQuery(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleQuery"

	terms, start, err := h.termsFromQuery(r)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}
	h.serveSchedule(w, r, terms, start, op)
}

func (h *handler) handleScheduleBody(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleBody"

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxRequestSize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req scheduleRequest
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("request exceeds limit of %d bytes", h.opts.MaxRequestSize)}, op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest,
			errorResponse{Error: fmt.Sprintf("failed to decode loan terms: %v", err)}, op)
		return
	}

	principal, rate, years := h.defaultValues()
	if req.Principal != nil {
		principal = *req.Principal
	}
	if req.AnnualInterestRate != nil {
		rate = *req.AnnualInterestRate
	}
	if req.TermYears != nil {
		years = *req.TermYears
	}

	terms, start, err := h.buildTerms(principal, rate, years, req.StartMonth)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}
	h.serveSchedule(w, r, terms, start, op)
}

func (h *handler) serveSchedule(w http.ResponseWriter, r *http.Request, terms amortization.LoanTerms, start, op string) {
	started := time.Now()
	key := cache.Key(terms, "json:"+start)

	if h.opts.Cache != nil {
		body, err := h.opts.Cache.Get(r.Context(), key)
		if err == nil {
			h.logger.Debug("schedule served from cache",
				zap.String("op", op),
				zap.String("key", key),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("failed to read cached schedule",
				zap.String("op", op),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	schedule, dates, err := h.generate(terms, start)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}

	elapsed := time.Since(started)
	response := scheduleResponse{
		Document: output.NewDocument(schedule, dates),
		Duration: elapsed.String(),
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(response); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to encode schedule: %v", err)}, op)
		return
	}

	if h.opts.Cache != nil {
		if err := h.opts.Cache.Set(r.Context(), key, body.Bytes()); err != nil {
			h.logger.Warn("failed to cache schedule",
				zap.String("op", op),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.String("principal", terms.Principal.String()),
		zap.String("annualInterestRate", terms.AnnualInterestRate.String()),
		zap.Int("termYears", terms.TermYears),
		zap.Int("rows", len(schedule.Rows)),
		zap.Duration("duration", elapsed),
	)

	w.Header().Set("Content-Type", "application/json")
	if h.opts.Cache != nil {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

func (h *handler) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleCSV"

	terms, start, err := h.termsFromQuery(r)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}
	schedule, dates, err := h.generate(terms, start)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}

	var body bytes.Buffer
	if err := output.CsvFormat(&body, schedule, dates); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to render CSV: %v", err)}, op)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="amortization-%s-%s-%d.csv"`,
		terms.Principal.StringFixed(constants.CurrencyPlaces), terms.AnnualInterestRate.String(), terms.TermYears))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

func (h *handler) handleChart(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleChart"

	terms, start, err := h.termsFromQuery(r)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}
	schedule, dates, err := h.generate(terms, start)
	if err != nil {
		h.respondTermsError(w, err, op)
		return
	}

	column := strings.TrimSpace(r.URL.Query().Get("column"))
	var line *charts.Line
	if column == "" {
		line = chart.StackedArea(schedule, dates)
	} else if line, err = chart.Column(schedule, column, dates); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			errorResponse{Error: fmt.Sprintf("%v; expected one of %s", err, strings.Join(chart.Columns(), ", ")), Field: "column"}, op)
		return
	}

	var body bytes.Buffer
	if err := chart.Render(&body, line); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to render chart: %v", err)}, op)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.opts.Version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) generate(terms amortization.LoanTerms, start string) (*amortization.Schedule, []string, error) {
	schedule, err := h.generator.Generate(terms)
	if err != nil {
		return nil, nil, err
	}
	dates, err := datetime.MonthLabels(start, len(schedule.Rows))
	if err != nil {
		return nil, nil, err
	}
	return schedule, dates, nil
}

// termsFromQuery reads principal, rate, years and start from the query
// string. Missing values take the default loan's values.
func (h *handler) termsFromQuery(r *http.Request) (amortization.LoanTerms, string, error) {
	query := r.URL.Query()
	principal, rate, years := h.defaultValues()

	var err error
	if principal, err = queryFloat(query.Get("principal"), principal, amortization.FieldPrincipal); err != nil {
		return amortization.LoanTerms{}, "", err
	}
	if rate, err = queryFloat(query.Get("rate"), rate, amortization.FieldAnnualInterestRate); err != nil {
		return amortization.LoanTerms{}, "", err
	}
	if years, err = queryFloat(query.Get("years"), years, amortization.FieldTermYears); err != nil {
		return amortization.LoanTerms{}, "", err
	}

	return h.buildTerms(principal, rate, years, strings.TrimSpace(query.Get("start")))
}

func (h *handler) buildTerms(principal, rate, years float64, start string) (amortization.LoanTerms, string, error) {
	terms, err := amortization.NewLoanTerms(principal, rate, years)
	if err != nil {
		return amortization.LoanTerms{}, "", err
	}
	if terms.TermYears > h.opts.MaxTermYears {
		return amortization.LoanTerms{}, "", &amortization.InvalidLoanTermsError{
			Field:  amortization.FieldTermYears,
			Value:  strconv.Itoa(terms.TermYears),
			Reason: fmt.Sprintf("must not exceed %d", h.opts.MaxTermYears),
		}
	}
	if start != "" {
		if _, err := datetime.ParseMonth(start); err != nil {
			return amortization.LoanTerms{}, "", &startMonthError{err: err}
		}
	}
	return terms, start, nil
}

func (h *handler) defaultValues() (float64, float64, float64) {
	return h.opts.Defaults.Principal.InexactFloat64(),
		h.opts.Defaults.AnnualInterestRate.InexactFloat64(),
		float64(h.opts.Defaults.TermYears)
}

func queryFloat(raw string, fallback float64, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &amortization.InvalidLoanTermsError{Field: field, Value: raw, Reason: "must be a number"}
	}
	return value, nil
}

type startMonthError struct {
	err error
}

func (e *startMonthError) Error() string {
	return "invalid start month: " + e.err.Error()
}

func (e *startMonthError) Unwrap() error {
	return e.err
}

func (h *handler) respondTermsError(w http.ResponseWriter, err error, op string) {
	var termsErr *amortization.InvalidLoanTermsError
	if errors.As(err, &termsErr) {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: termsErr.Field}, op)
		return
	}
	var startErr *startMonthError
	if errors.As(err, &startErr) {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "start"}, op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, errorResponse{Error: err.Error()}, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, resp errorResponse, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("schedule request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", resp.Error),
		)
	} else {
		h.logger.Info("schedule request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", resp.Error),
		)
	}

	h.writeJSON(w, status, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
