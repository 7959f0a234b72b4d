package handlers

import (
	"fmt"
	"net/http"

	"github.com/wonny/tradeblocks/internal/alignment"
	"github.com/wonny/tradeblocks/internal/analytics"
	"github.com/wonny/tradeblocks/internal/blockconfig"
	"github.com/wonny/tradeblocks/internal/blocks"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/correlation"
	"github.com/wonny/tradeblocks/internal/superblock"
	"github.com/wonny/tradeblocks/pkg/logger"
)

// AnalysisHandler handles endpoints that take entries inline
type AnalysisHandler struct {
	svc    *analytics.Service
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc *analytics.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		svc:    svc,
		logger: log,
	}
}

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Entries      []contracts.EquityCurveEntry `json:"entries"`
	RiskFreeRate *float64                     `json:"risk_free_rate,omitempty"`
}

// AnalyzeResponse carries stats and chart series of the posted entries
type AnalyzeResponse struct {
	Stats     contracts.PortfolioStats       `json:"stats"`
	ChartData contracts.EquityCurveChartData `json:"chart_data"`
}

// Analyze computes stats and chart data for posted entries
// POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rf, err := h.riskFree(req.RiskFreeRate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, AnalyzeResponse{
		Stats:     h.svc.ComputeStats(req.Entries, rf),
		ChartData: h.svc.BuildChartData(req.Entries),
	})
}

// CorrelationRequest is the body of POST /api/correlation.
// Either Entries (grouped by strategy_name) or BlockIDs.
type CorrelationRequest struct {
	Entries      []contracts.EquityCurveEntry `json:"entries,omitempty"`
	BlockIDs     []string                     `json:"block_ids,omitempty"`
	Method       string                       `json:"method,omitempty"`
	Alignment    string                       `json:"alignment,omitempty"`
	Benchmark    []contracts.EquityCurveEntry `json:"benchmark,omitempty"`
	RiskFreeRate *float64                     `json:"risk_free_rate,omitempty"`
}

// CorrelationResponse carries the matrix, its analytics and optional benchmark rows
type CorrelationResponse struct {
	Matrix    contracts.CorrelationMatrix      `json:"matrix"`
	Analytics contracts.CorrelationAnalytics   `json:"analytics"`
	Benchmark []contracts.BenchmarkCorrelation `json:"benchmark,omitempty"`
}

// Correlation builds a correlation matrix and diversification analytics
// POST /api/correlation
func (h *AnalysisHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	var req CorrelationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := h.correlationOptions(req.Method, req.Alignment)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rf, err := h.riskFree(req.RiskFreeRate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp CorrelationResponse
	switch {
	case len(req.BlockIDs) > 0 && len(req.Entries) > 0:
		respondError(w, http.StatusBadRequest, "send either entries or block_ids, not both")
		return

	case len(req.BlockIDs) > 0:
		result, err := h.svc.CorrelationForBlocks(r.Context(), req.BlockIDs, opts)
		if err != nil {
			h.fail(w, err, "Failed to correlate blocks")
			return
		}
		resp.Matrix, resp.Analytics = result.Matrix, result.Analytics

	default:
		series := alignment.GroupByStrategy(req.Entries)
		resp.Matrix = h.svc.BuildCorrelationMatrix(series, opts)
		resp.Analytics = h.svc.AnalyzeCorrelations(resp.Matrix)
		if len(req.Benchmark) > 0 {
			resp.Benchmark = h.svc.CorrelateToBenchmark(series, req.Benchmark, rf)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// SuperBlockComponent is one component of POST /api/superblock.
// A component references a stored block or carries its data inline.
type SuperBlockComponent struct {
	Name            string                       `json:"name"`
	BlockID         string                       `json:"block_id,omitempty"`
	Entries         []contracts.EquityCurveEntry `json:"entries,omitempty"`
	Trades          []contracts.Trade            `json:"trades,omitempty"`
	DailyLogs       []contracts.DailyLog         `json:"daily_logs,omitempty"`
	StartingCapital float64                      `json:"starting_capital,omitempty"`
}

func (c SuperBlockComponent) inline() bool {
	return len(c.Entries) > 0 || len(c.Trades) > 0 || len(c.DailyLogs) > 0
}

func (c SuperBlockComponent) source() contracts.BlockSource {
	if len(c.Trades) > 0 || len(c.DailyLogs) > 0 {
		return contracts.TradeSource{Trades: c.Trades, DailyLogs: c.DailyLogs, StartingCapital: c.StartingCapital}
	}
	return contracts.EquityCurveSource{Entries: c.Entries}
}

// SuperBlockRequest is the body of POST /api/superblock
type SuperBlockRequest struct {
	Name         string                `json:"name"`
	Alignment    string                `json:"alignment,omitempty"`
	RiskFreeRate *float64              `json:"risk_free_rate,omitempty"`
	Components   []SuperBlockComponent `json:"components"`
}

// SuperBlock merges components into one combined curve
// POST /api/superblock
func (h *AnalysisHandler) SuperBlock(w http.ResponseWriter, r *http.Request) {
	var req SuperBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rf, err := h.riskFree(req.RiskFreeRate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		req.Name = "super-block"
	}
	strategy := contracts.SuperBlockAlignment(req.Alignment)
	if strategy != "" && !strategy.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown alignment %q", req.Alignment))
		return
	}

	var (
		inline, stored int
	)
	for _, c := range req.Components {
		if c.inline() {
			inline++
		} else if c.BlockID != "" {
			stored++
		} else {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("component %q has neither data nor block_id", c.Name))
			return
		}
	}
	if inline > 0 && stored > 0 {
		respondError(w, http.StatusBadRequest, "components must be all inline or all block references")
		return
	}

	var data *contracts.SuperBlockData
	if stored > 0 {
		refs := make([]blockconfig.Component, len(req.Components))
		for i, c := range req.Components {
			refs[i] = blockconfig.Component{BlockID: c.BlockID, Name: c.Name}
		}
		data, err = h.svc.CombineBlocks(r.Context(), req.Name, refs, strategy, rf)
	} else {
		series := make([]superblock.Series, 0, len(req.Components))
		for i, c := range req.Components {
			name := c.Name
			if name == "" {
				name = fmt.Sprintf("component-%d", i+1)
			}
			entries, nerr := blocks.Normalize(c.source(), name)
			if nerr != nil {
				respondError(w, http.StatusBadRequest, nerr.Error())
				return
			}
			series = append(series, superblock.Series{Name: name, Entries: entries})
		}
		data, err = h.svc.CombineSuperBlock(req.Name, series, strategy, rf)
	}

	if err != nil {
		h.fail(w, err, "Failed to combine super block")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *AnalysisHandler) riskFree(v *float64) (float64, error) {
	if v == nil {
		return h.svc.RiskFreeRate(), nil
	}
	if *v <= -100 || *v > 100 {
		return 0, fmt.Errorf("risk_free_rate must be in (-100, 100]")
	}
	return *v, nil
}

func (h *AnalysisHandler) correlationOptions(method, align string) (correlation.Options, error) {
	opts := h.svc.DefaultCorrelationOptions()

	switch m := contracts.CorrelationMethod(method); m {
	case "":
	case contracts.MethodPearson, contracts.MethodSpearman:
		opts.Method = m
	default:
		return opts, fmt.Errorf("method must be pearson or spearman")
	}

	switch a := contracts.AlignmentPolicy(align); a {
	case "":
	case contracts.AlignCommon, contracts.AlignZeroFill:
		opts.Alignment = a
	default:
		return opts, fmt.Errorf("alignment must be common or zero-fill")
	}
	return opts, nil
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error(message)
		respondError(w, status, message)
		return
	}
	respondError(w, status, err.Error())
}
