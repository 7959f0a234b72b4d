package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/tradeblocks/internal/analytics"
	"github.com/wonny/tradeblocks/internal/charts"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/pkg/logger"
)

// BlockHandler handles stored-block endpoints
// ⭐ SSOT: 블록 조회 API 핸들러는 이 구조체에서만
type BlockHandler struct {
	svc    *analytics.Service
	logger *logger.Logger
}

// NewBlockHandler creates a new block handler
func NewBlockHandler(svc *analytics.Service, log *logger.Logger) *BlockHandler {
	return &BlockHandler{
		svc:    svc,
		logger: log,
	}
}

// List returns the stored blocks
// GET /api/blocks
func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListBlocks(r.Context())
	if err != nil {
		h.fail(w, err, "", "Failed to list blocks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": list,
		"count":  len(list),
	})
}

// Stats returns the portfolio statistics of one block
// GET /api/blocks/{id}/stats?rf=2.0
func (h *BlockHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snapshot.PortfolioStats)
}

// Chart returns the chart series of one block
// GET /api/blocks/{id}/chart
func (h *BlockHandler) Chart(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snapshot.ChartData)
}

// Snapshot returns entries, stats and chart series of one block
// GET /api/blocks/{id}/snapshot?rf=2.0
func (h *BlockHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// ChartPNG renders the equity or drawdown chart of one block
// GET /api/blocks/{id}/chart.png?kind=equity|drawdown&width=900&height=480
func (h *BlockHandler) ChartPNG(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	opts := charts.RenderOptions{Title: snapshot.BlockID}
	if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 && v <= 4000 {
		opts.Width = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("height")); err == nil && v > 0 && v <= 4000 {
		opts.Height = v
	}

	var (
		png []byte
		err error
	)
	switch kind := r.URL.Query().Get("kind"); kind {
	case "", "equity":
		png, err = charts.RenderEquityPNG(snapshot.ChartData, opts)
	case "drawdown":
		png, err = charts.RenderDrawdownPNG(snapshot.ChartData, opts)
	default:
		respondError(w, http.StatusBadRequest, "kind must be equity or drawdown")
		return
	}

	if errors.Is(err, charts.ErrNothingToRender) {
		respondError(w, http.StatusNotFound, "block has no entries to render")
		return
	}
	if err != nil {
		h.fail(w, err, snapshot.BlockID, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Benchmark regresses one block on the benchmark index
// GET /api/blocks/{id}/benchmark?symbol=KOSPI&rf=2.0
func (h *BlockHandler) Benchmark(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rf, err := riskFreeParam(r, h.svc.RiskFreeRate())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.BenchmarkForBlock(r.Context(), id, r.URL.Query().Get("symbol"), rf)
	if err != nil {
		h.fail(w, err, id, "Failed to correlate with benchmark")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Risk returns VaR and a Monte Carlo simulation of one block
// GET /api/blocks/{id}/risk?simulations=10000&horizon=21&method=bootstrap&seed=42
func (h *BlockHandler) Risk(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cfg, err := riskConfigParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.svc.RiskForBlock(r.Context(), id, cfg)
	if err != nil {
		h.fail(w, err, id, "Failed to compute risk profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *BlockHandler) snapshot(w http.ResponseWriter, r *http.Request) (*contracts.Snapshot, bool) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "block id is required")
		return nil, false
	}

	rf, err := riskFreeParam(r, h.svc.RiskFreeRate())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	snapshot, err := h.svc.SnapshotForBlock(r.Context(), id, rf)
	if err != nil {
		h.fail(w, err, id, "Failed to compute snapshot")
		return nil, false
	}
	return snapshot, true
}

func (h *BlockHandler) fail(w http.ResponseWriter, err error, blockID, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("block_id", blockID).Error(message)
		respondError(w, status, message)
		return
	}
	respondError(w, status, err.Error())
}
