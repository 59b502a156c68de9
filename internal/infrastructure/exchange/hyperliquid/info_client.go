package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"hlsnap/internal/application"
	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
	"hlsnap/internal/infrastructure/exchange"
)

// InfoClient Hyperliquid /info REST 客户端
type InfoClient struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	maxRetries   int
	retryBackoff time.Duration
}

// Option configures an InfoClient.
type Option func(*InfoClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *InfoClient) { c.httpClient = hc }
}

// WithTimeout sets the request timeout. It is applied to a copy of the HTTP
// client once all options have run, so a client passed to WithHTTPClient is
// never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *InfoClient) { c.timeout = d }
}

// WithRetries sets the retry count and the initial backoff.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *InfoClient) {
		c.maxRetries = max(n, 0)
		c.retryBackoff = backoff
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *InfoClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewInfoClient 创建 Hyperliquid REST 客户端
func NewInfoClient(baseURL string, opts ...Option) *InfoClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.hyperliquid.xyz"
	}
	c := &InfoClient{
		baseURL: strings.TrimSpace(baseURL),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:      rate.NewLimiter(rate.Limit(2), 1),
		maxRetries:   2,
		retryBackoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "hyperliquid-info",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

func (c *InfoClient) Name() string { return application.ExchangeHyperliquid }

// flexString accepts a JSON string, a bare number or null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = exchange.BytesTrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

type universeAsset struct {
	Name        string `json:"name"`
	SzDecimals  int    `json:"szDecimals"`
	MaxLeverage int    `json:"maxLeverage"`
	IsDelisted  bool   `json:"isDelisted,omitempty"`
}

type metaResp struct {
	Universe []universeAsset `json:"universe"`
}

type assetCtxResp struct {
	Funding      flexString `json:"funding"`
	OpenInterest flexString `json:"openInterest"` // 以币计
	PrevDayPx    flexString `json:"prevDayPx"`
	MarkPx       flexString `json:"markPx"`
	OraclePx     flexString `json:"oraclePx"`
	DayNtlVlm    flexString `json:"dayNtlVlm"`
}

// MetaAndAssetContexts 拉取 universe 与资产上下文
//
// The endpoint returns [meta, ctxs] where ctxs[i] describes universe[i]. The
// positional pairs are turned into name-keyed records here; a context with no
// universe entry is unnamed and dropped. Open interest is converted from coin
// units to quote currency using the mark price.
func (c *InfoClient) MetaAndAssetContexts(ctx context.Context) ([]model.AssetMeta, []model.AssetContext, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.postWithRetry(ctx, map[string]string{"type": "metaAndAssetCtxs"})
	})
	if err != nil {
		return nil, nil, err
	}
	body := res.([]byte)

	var parts []json.RawMessage
	if err := exchange.ParseJSON(body, &parts); err != nil {
		return nil, nil, err
	}
	if len(parts) < 2 {
		return nil, nil, fmt.Errorf("metaAndAssetCtxs: want 2 elements, got %d", len(parts))
	}

	var meta metaResp
	if err := exchange.ParseJSON(parts[0], &meta); err != nil {
		return nil, nil, fmt.Errorf("metaAndAssetCtxs meta: %w", err)
	}
	var rawCtxs []assetCtxResp
	if err := exchange.ParseJSON(parts[1], &rawCtxs); err != nil {
		return nil, nil, fmt.Errorf("metaAndAssetCtxs ctxs: %w", err)
	}

	if len(rawCtxs) != len(meta.Universe) {
		log.Warn().
			Int("universe", len(meta.Universe)).
			Int("ctxs", len(rawCtxs)).
			Msg("universe and asset contexts differ in length")
	}

	metas := make([]model.AssetMeta, 0, len(meta.Universe))
	ctxs := make([]model.AssetContext, 0, len(rawCtxs))
	for i, u := range meta.Universe {
		name := strings.TrimSpace(u.Name)
		if i >= len(rawCtxs) {
			metas = append(metas, model.AssetMeta{Name: name})
			continue
		}
		rc := rawCtxs[i]
		metas = append(metas, model.AssetMeta{
			Name:         name,
			PrevDayPrice: string(rc.PrevDayPx),
		})
		ctxs = append(ctxs, model.AssetContext{
			Name:         name,
			FundingRate:  string(rc.Funding),
			OpenInterest: notional(string(rc.OpenInterest), string(rc.MarkPx)),
			MarkPrice:    string(rc.MarkPx),
		})
	}
	return metas, ctxs, nil
}

// notional returns size*price as a decimal string, or "" when either side
// does not parse.
func notional(size, price string) string {
	sz, err := decimal.NewFromString(strings.TrimSpace(size))
	if err != nil {
		return ""
	}
	px, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return ""
	}
	return sz.Mul(px).String()
}

var _ port.MarketSource = (*InfoClient)(nil)
