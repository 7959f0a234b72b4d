package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/pkg/httputil"
	"github.com/wonny/tradeblocks/pkg/logger"
)

const chartBody = `[['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
["20240102", 2650.0, 2670.1, 2640.5, 2669.81, 400000, 0.0],
["20240103", 2669.0, 2670.0, 2600.0, 2607.31, 500000, 0.0],
["20240104", 2600.0, 2610.0, 2580.0, 2587.02, 450000, 0.0]
]`

const dailyTableHTML = `<html><body>
<table class="type_1">
<tr><th>날짜</th><th>체결가</th></tr>
<tr><td class="date">2024.01.04</td><td class="number_1">2,587.02</td><td class="rate_down">20.29</td></tr>
<tr><td class="date">2024.01.03</td><td class="number_1">2,607.31</td><td class="rate_down">62.50</td></tr>
<tr><td class="blank_07" colspan="6"></td></tr>
<tr><td class="date">2024.01.02</td><td class="number_1">2,669.81</td><td class="rate_up">14.53</td></tr>
</table>
</body></html>`

func newTestClient(server *httptest.Server) *Client {
	http := httputil.New(logger.Nop()).DisableRetry()
	return NewClient(http, logger.Nop(), server.URL).WithChartURL(server.URL).WithMaxPages(3)
}

func jan(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestParseChartResponse(t *testing.T) {
	closes, err := parseChartResponse(chartBody)
	require.NoError(t, err)
	require.Len(t, closes, 3)
	assert.Equal(t, IndexClose{Date: "2024-01-02", Close: 2669.81}, closes[0])
	assert.Equal(t, 2587.02, closes[2].Close)
}

func TestParseChartResponseRegexFallback(t *testing.T) {
	// 깨진 JSON (닫는 괄호 누락)
	broken := `[["날짜","시가","고가","저가","종가"], ["20240102", 2650.0, 2670.1, 2640.5, 2669.81], ["20240103", 2669, 2670, 2600, 2607.31]`

	closes, err := parseChartResponse(broken)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.Equal(t, 2607.31, closes[1].Close)

	_, err = parseChartResponse("<html>maintenance</html>")
	assert.Error(t, err)
}

func TestParseDailyTable(t *testing.T) {
	closes, err := parseDailyTable(dailyTableHTML)
	require.NoError(t, err)
	require.Len(t, closes, 3)
	assert.Equal(t, IndexClose{Date: "2024-01-04", Close: 2587.02}, closes[0])
	assert.Equal(t, "2024-01-02", closes[2].Date)
}

func TestFetchIndex_Chart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/siseJson.naver", r.URL.Path)
		assert.Equal(t, "KOSPI", r.URL.Query().Get("symbol"))
		assert.Equal(t, "20240101", r.URL.Query().Get("startTime"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer server.Close()

	entries, err := newTestClient(server).FetchIndex(context.Background(), "KOSPI", jan(1), jan(31))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "KOSPI", entries[0].StrategyName)
	assert.Equal(t, 0.0, entries[0].DailyReturnPct)
	assert.InDelta(t, 2607.31/2669.81-1, entries[1].DailyReturnPct, 1e-12)
	assert.Equal(t, 2587.02, entries[2].AccountValue)
}

func TestFetchIndex_FallsBackToDailyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/siseJson.naver":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/sise/sise_index_day.naver":
			if r.URL.Query().Get("page") == "1" {
				_, _ = w.Write([]byte(dailyTableHTML))
				return
			}
			_, _ = w.Write([]byte(`<table class="type_1"></table>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	entries, err := newTestClient(server).FetchIndex(context.Background(), "KOSPI", jan(3), jan(31))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, jan(3), entries[0].Date)
	assert.InDelta(t, 2587.02/2607.31-1, entries[1].DailyReturnPct, 1e-12)
}

func TestFetchIndex_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchIndex(context.Background(), "KOSPI", jan(10), jan(20))
	assert.ErrorIs(t, err, ErrNoIndexData)
}

func TestFilterRange(t *testing.T) {
	closes := []IndexClose{
		{Date: "2024-01-05", Close: 3},
		{Date: "2024-01-01", Close: 1},
		{Date: "2024-01-03", Close: 2},
		{Date: "2024-01-03", Close: 9},
	}

	got := filterRange(closes, jan(2), jan(5))
	assert.Equal(t, []IndexClose{{Date: "2024-01-03", Close: 2}, {Date: "2024-01-05", Close: 3}}, got)
}
