package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/iwvelando/givewise/internal/estimate"
	"github.com/iwvelando/givewise/internal/rates"
	"github.com/iwvelando/givewise/pkg/format"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

var errNonFiniteResult = errors.New("inputs are too large to produce a finite estimate")

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	defaults    estimate.Input
	upgrader    websocket.Upgrader
}

// NewHandler constructs the HTTP handler that serves the web UI and estimate API.
// Requests that leave out an input fall back to defaults.
func NewHandler(logger *zap.Logger, cfg *Config, defaults estimate.Input, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
		defaults:    defaults,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/provinces", h.handleProvinces)
		r.Get("/income-brackets", h.handleIncomeBrackets)
		r.Get("/estimate", h.handleEstimate)
		r.Post("/estimate", h.handleEstimate)
		r.Get("/compare", h.handleCompare)
		r.Post("/compare", h.handleCompare)
		// Live recalculation for the web UI
		r.Get("/live", h.handleLive)
	})

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

type provincesResponse struct {
	Federal   rates.Federal    `json:"federal"`
	Provinces []rates.Province `json:"provinces"`
}

type estimateResponse struct {
	estimate.Result
	Display  displayValues `json:"display"`
	Warnings []string      `json:"warnings,omitempty"`
}

type displayValues struct {
	Donation             string `json:"donation"`
	FederalCredit        string `json:"federalCredit"`
	ProvincialCredit     string `json:"provincialCredit"`
	Credit               string `json:"credit"`
	CapitalGainsTaxSaved string `json:"capitalGainsTaxSaved"`
	TotalSavings         string `json:"totalSavings"`
	NetCost              string `json:"netCost"`
	EffectiveRate        string `json:"effectiveRate"`
}

type compareResponse struct {
	Cash             estimateResponse `json:"cash"`
	Securities       estimateResponse `json:"securities"`
	Advantage        float64          `json:"advantage"`
	AdvantageDisplay string           `json:"advantageDisplay"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleProvinces(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, provincesResponse{
		Federal:   rates.FederalRates(),
		Provinces: rates.Provinces(),
	})
}

func (h *handler) handleIncomeBrackets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, estimate.IncomeBracketsWith(h.defaults.Income))
}

func (h *handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeInput(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusForDecodeError(err), err.Error(), "server.handleEstimate")
		return
	}

	resp, err := buildEstimate(in)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), "server.handleEstimate")
		return
	}
	h.logger.Debug("estimate computed",
		zap.String("op", "server.handleEstimate"),
		zap.String("province", in.Province),
		zap.Stringer("giftType", in.GiftType),
		zap.Float64("netCost", resp.NetCost),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeInput(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusForDecodeError(err), err.Error(), "server.handleCompare")
		return
	}

	resp, err := buildComparison(in)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), "server.handleCompare")
		return
	}
	h.logger.Debug("comparison computed",
		zap.String("op", "server.handleCompare"),
		zap.String("province", in.Province),
		zap.Float64("advantage", resp.Advantage),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func buildEstimate(in estimate.Input) (estimateResponse, error) {
	result := estimate.Calculate(in)
	if err := checkFiniteResult(result); err != nil {
		return estimateResponse{}, err
	}
	return estimateResponse{
		Result:   result,
		Display:  display(result),
		Warnings: estimate.Validate(in),
	}, nil
}

func buildComparison(in estimate.Input) (compareResponse, error) {
	c := estimate.Compare(in)
	for _, r := range []estimate.Result{c.Cash, c.Securities} {
		if err := checkFiniteResult(r); err != nil {
			return compareResponse{}, err
		}
	}
	if math.IsNaN(c.Advantage) || math.IsInf(c.Advantage, 0) {
		return compareResponse{}, errNonFiniteResult
	}
	return compareResponse{
		Cash:             estimateResponse{Result: c.Cash, Display: display(c.Cash), Warnings: estimate.Validate(c.Cash.Input)},
		Securities:       estimateResponse{Result: c.Securities, Display: display(c.Securities), Warnings: estimate.Validate(c.Securities.Input)},
		Advantage:        c.Advantage,
		AdvantageDisplay: format.WholeCurrency(c.Advantage),
	}, nil
}

func display(r estimate.Result) displayValues {
	return displayValues{
		Donation:             format.WholeCurrency(r.Input.Amount),
		FederalCredit:        format.WholeCurrency(r.Credit.Federal),
		ProvincialCredit:     format.WholeCurrency(r.Credit.Provincial),
		Credit:               format.WholeCurrency(r.Credit.Total),
		CapitalGainsTaxSaved: format.WholeCurrency(r.CapitalGainsTaxSaved),
		TotalSavings:         format.WholeCurrency(r.TotalSavings),
		NetCost:              format.WholeCurrency(r.NetCost),
		EffectiveRate:        format.Percent(r.EffectiveRate),
	}
}

// decodeInput builds calculator input from the request, starting from the
// defaults. POST requests carry JSON; GET requests use query parameters.
func (h *handler) decodeInput(w http.ResponseWriter, r *http.Request) (estimate.Input, error) {
	in := h.defaults

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			return in, fmt.Errorf("failed to decode input: %w", err)
		}
	} else if err := applyQuery(&in, r); err != nil {
		return in, err
	}

	return in, checkFinite(in)
}

func applyQuery(in *estimate.Input, r *http.Request) error {
	q := r.URL.Query()

	numbers := []struct {
		key string
		dst *float64
	}{
		{"amount", &in.Amount},
		{"income", &in.Income},
		{"adjustedCostBase", &in.AdjustedCostBase},
	}
	for _, n := range numbers {
		raw := strings.TrimSpace(q.Get(n.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: expected a number", n.key, raw)
		}
		*n.dst = v
	}

	if province := strings.TrimSpace(q.Get("province")); province != "" {
		in.Province = province
	}
	if raw := q.Get("giftType"); raw != "" {
		giftType, err := estimate.ParseGiftType(raw)
		if err != nil {
			return err
		}
		in.GiftType = giftType
	}
	return nil
}

// checkFinite rejects values that cannot be encoded in a JSON response.
func checkFinite(in estimate.Input) error {
	for name, v := range map[string]float64{
		"amount":           in.Amount,
		"income":           in.Income,
		"adjustedCostBase": in.AdjustedCostBase,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	return nil
}

// checkFiniteResult rejects finite inputs whose results overflowed.
func checkFiniteResult(r estimate.Result) error {
	for _, v := range []float64{
		r.Credit.Federal, r.Credit.Provincial, r.Credit.Total,
		r.CapitalGainsTaxSaved, r.TotalSavings, r.NetCost, r.EffectiveRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errNonFiniteResult
		}
	}
	return nil
}

func statusForDecodeError(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// logRequests logs every request at debug level and failures at warn level.
func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("op", "server.request"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		}
		if ww.Status() >= http.StatusBadRequest {
			h.logger.Warn("request failed", fields...)
			return
		}
		h.logger.Debug("request served", fields...)
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("estimate request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
