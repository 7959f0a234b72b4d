package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/wonny/tradeblocks/internal/analytics"
	"github.com/wonny/tradeblocks/internal/blockconfig"
	"github.com/wonny/tradeblocks/internal/blocks"
	"github.com/wonny/tradeblocks/internal/external/naver"
	"github.com/wonny/tradeblocks/internal/risk"
	"github.com/wonny/tradeblocks/internal/superblock"
)

// maxBodyBytes bounds POST payloads
const maxBodyBytes = 32 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads a request body into dest
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var verr blockconfig.ValidationError
	switch {
	case errors.Is(err, analytics.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, superblock.ErrUnknownAlign), errors.As(err, &verr), errors.Is(err, blocks.ErrUnknownSource),
		errors.Is(err, risk.ErrInvalidConfig):
		return http.StatusBadRequest
	case superblock.IsFatal(err), errors.Is(err, risk.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analytics.ErrNoDataSource), errors.Is(err, analytics.ErrNoBenchmarkSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, naver.ErrNoIndexData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// riskFreeParam reads ?rf= (annual percent), falling back to def
func riskFreeParam(r *http.Request, def float64) (float64, error) {
	raw := r.URL.Query().Get("rf")
	if raw == "" {
		return def, nil
	}
	rf, err := strconv.ParseFloat(raw, 64)
	if err != nil || rf <= -100 || rf > 100 {
		return 0, fmt.Errorf("rf must be a number in (-100, 100]")
	}
	return rf, nil
}

// riskConfigParams reads ?method=&simulations=&horizon=&seed= over the defaults
func riskConfigParams(r *http.Request) (risk.Config, error) {
	cfg := risk.DefaultConfig()
	q := r.URL.Query()

	if m := q.Get("method"); m != "" {
		cfg.Method = risk.SimulationMethod(m)
	}

	ints := []struct {
		key  string
		dest *int
		max  int
	}{
		{"simulations", &cfg.NumSimulations, 100000},
		{"horizon", &cfg.HorizonDays, 504},
	}
	for _, p := range ints {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > p.max {
			return cfg, fmt.Errorf("%s must be an integer in [1, %d]", p.key, p.max)
		}
		*p.dest = v
	}

	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("seed must be an integer")
		}
		cfg.Seed = seed
	}

	return cfg, risk.ValidateConfig(cfg)
}
