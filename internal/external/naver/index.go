package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/tradeblocks/internal/blocks"
	"github.com/wonny/tradeblocks/internal/contracts"
)

// ErrNoIndexData is returned when neither source yields a close in range
var ErrNoIndexData = errors.New("naver: no index data")

var (
	chartRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+)`)
	htmlDateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)
)

// FetchIndex returns a benchmark series (KOSPI, KOSDAQ, KPI200) as entries.
// The chart API is tried first; the daily HTML table is the fallback.
// ⭐ SSOT: 벤치마크 지수 조회는 이 함수에서만
func (c *Client) FetchIndex(ctx context.Context, symbol string, from, to time.Time) ([]contracts.EquityCurveEntry, error) {
	closes, err := c.fetchChart(ctx, symbol, from, to)
	if err != nil || len(closes) == 0 {
		c.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
		}).WithError(err).Warn("Chart API unavailable, falling back to daily table")

		closes, err = c.fetchDailyTable(ctx, symbol, from, to)
		if err != nil {
			return nil, err
		}
	}

	closes = filterRange(closes, from, to)
	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: %s %s~%s", ErrNoIndexData, symbol, contracts.DateKey(from), contracts.DateKey(to))
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(closes),
	}).Debug("Fetched index closes")

	return ToEntries(symbol, closes), nil
}

// ToEntries converts closes to entries with day-over-day returns
func ToEntries(symbol string, closes []IndexClose) []contracts.EquityCurveEntry {
	logs := make([]contracts.DailyLog, 0, len(closes))
	for _, ic := range closes {
		d, err := contracts.ParseDateKey(ic.Date)
		if err != nil {
			continue
		}
		logs = append(logs, contracts.DailyLog{Date: d, NetLiquidity: ic.Close})
	}
	// 지수 종가를 순자산처럼 다루면 일별 수익률 계산이 같아짐
	return blocks.FromDailyLogs(logs, symbol)
}

func (c *Client) fetchChart(ctx context.Context, symbol string, from, to time.Time) ([]IndexClose, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.fetch(ctx, c.chartURL, "/siseJson.naver", params)
	if err != nil {
		return nil, err
	}
	return parseChartResponse(body)
}

// parseChartResponse parses the single-quoted siseJson array, with a regex fallback
func parseChartResponse(body string) ([]IndexClose, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rows [][]interface{}
	if err := json.Unmarshal([]byte(body), &rows); err == nil {
		return parseChartRows(rows), nil
	}

	matches := chartRowRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("unrecognized chart response")
	}

	closes := make([]IndexClose, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			continue
		}
		closes = append(closes, IndexClose{Date: compactToKey(m[1]), Close: v})
	}
	return closes, nil
}

// parseChartRows reads [date, open, high, low, close, ...]; the first row is the header
func parseChartRows(rows [][]interface{}) []IndexClose {
	closes := make([]IndexClose, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		dateStr = strings.TrimSpace(dateStr)
		if len(dateStr) != 8 {
			continue
		}
		v := toFloat(row[4])
		if v <= 0 {
			continue
		}
		closes = append(closes, IndexClose{Date: compactToKey(dateStr), Close: v})
	}
	return closes
}

// fetchDailyTable paginates sise_index_day until it passes from
func (c *Client) fetchDailyTable(ctx context.Context, symbol string, from, to time.Time) ([]IndexClose, error) {
	var all []IndexClose
	fromKey := contracts.DateKey(from)

	for page := 1; page <= c.maxPages; page++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		params := url.Values{}
		params.Set("code", symbol)
		params.Set("page", strconv.Itoa(page))

		html, err := c.fetch(ctx, c.baseURL, "/sise/sise_index_day.naver", params)
		if err != nil {
			return all, err
		}

		rows, err := parseDailyTable(html)
		if err != nil {
			return all, err
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)

		// 페이지는 최신순, 가장 오래된 행이 from 보다 이전이면 종료
		if rows[len(rows)-1].Date < fromKey {
			break
		}
	}

	return all, nil
}

// parseDailyTable reads rows of table.type_1: td.date then the first td.number_1 (close)
func parseDailyTable(html string) ([]IndexClose, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var closes []IndexClose
	doc.Find("table.type_1 tr").Each(func(i int, row *goquery.Selection) {
		dateText := strings.TrimSpace(row.Find("td.date").First().Text())
		if !htmlDateRe.MatchString(dateText) {
			return
		}

		closeText := strings.TrimSpace(row.Find("td.number_1").First().Text())
		v, err := strconv.ParseFloat(strings.ReplaceAll(closeText, ",", ""), 64)
		if err != nil || v <= 0 {
			return
		}

		closes = append(closes, IndexClose{
			Date:  strings.ReplaceAll(dateText, ".", "-"),
			Close: v,
		})
	})
	return closes, nil
}

// filterRange keeps [from, to] and sorts ascending, one close per date
func filterRange(closes []IndexClose, from, to time.Time) []IndexClose {
	fromKey, toKey := contracts.DateKey(from), contracts.DateKey(to)
	seen := make(map[string]struct{}, len(closes))

	out := make([]IndexClose, 0, len(closes))
	for _, ic := range closes {
		if ic.Date < fromKey || ic.Date > toKey {
			continue
		}
		if _, dup := seen[ic.Date]; dup {
			continue
		}
		seen[ic.Date] = struct{}{}
		out = append(out, ic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func compactToKey(s string) string {
	return s[:4] + "-" + s[4:6] + "-" + s[6:8]
}

// toFloat converts JSON scalars to float64
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
		return f
	default:
		return 0
	}
}
