package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/tradeblocks/pkg/httputil"
	"github.com/wonny/tradeblocks/pkg/logger"
)

const (
	defaultBaseURL  = "https://finance.naver.com"
	defaultChartURL = "https://fchart.stock.naver.com"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // HTML 일별 시세
	chartURL   string // siseJson 차트 API
	maxPages   int
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("naver"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		chartURL:   defaultChartURL,
		maxPages:   60,
	}
}

// WithChartURL overrides the chart API host
func (c *Client) WithChartURL(chartURL string) *Client {
	c.chartURL = strings.TrimRight(chartURL, "/")
	return c
}

// WithMaxPages bounds the HTML pagination fallback
func (c *Client) WithMaxPages(n int) *Client {
	if n > 0 {
		c.maxPages = n
	}
	return c
}

// fetch returns the body of a GET request
func (c *Client) fetch(ctx context.Context, base, path string, params url.Values) (string, error) {
	fullURL := fmt.Sprintf("%s%s", base, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	return string(body), nil
}

// IndexClose is one daily closing level of a market index
type IndexClose struct {
	Date  string // YYYY-MM-DD
	Close float64
}
