// Package subgraph reads pool valuation and daily fee stats from the GMX
// stats subgraph over GraphQL.
package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"FeeCast/internal/domain/models"
	domrepo "FeeCast/internal/domain/repository"
	xhttp "FeeCast/pkg/http"
	applogger "FeeCast/pkg/logger"
)

const SourceName = "subgraph"

const snapshotQuery = `query feeSnapshot($days: Int!) {
  glpStats(first: 1, orderBy: timestamp, orderDirection: desc) {
    timestamp
    aumInUsdg
  }
  feeStats(first: $days, orderBy: timestamp, orderDirection: desc, where: {period: %s}) {
    swap
    marginAndLiquidation
    mint
    burn
    timestamp
  }
}`

var periodPattern = regexp.MustCompile(`^[a-z]+$`)

// ErrGraphQL marks a response that carried a GraphQL errors array.
var ErrGraphQL = errors.New("subgraph: graphql error")

// Option configures Client.
type Option func(*Client)

// Client implements repository.FeeSource against a subgraph endpoint.
type Client struct {
	url        string
	period     string
	attempts   int
	retryDelay time.Duration
	http       *xhttp.Client
	l          *applogger.Logger
	now        func() time.Time
}

var _ domrepo.FeeSource = (*Client)(nil)

// NewClient builds a client for url. Defaults: daily period, 3 attempts, 500ms linear backoff.
func NewClient(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("subgraph url is required")
	}
	c := &Client{
		url:        url,
		period:     "daily",
		attempts:   3,
		retryDelay: 500 * time.Millisecond,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !periodPattern.MatchString(c.period) {
		return nil, fmt.Errorf("subgraph period %q is not a valid enum value", c.period)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	}
	return c, nil
}

// WithPeriod selects the feeStats period enum, "daily" by default.
func WithPeriod(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.period = p
		}
	}
}

// WithRetry sets the attempt count and the base delay; attempt i waits i*delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type poolStat struct {
	Timestamp json.Number `json:"timestamp"`
	AumInUsdg string      `json:"aumInUsdg"`
}

type feeStat struct {
	Swap                 string      `json:"swap"`
	MarginAndLiquidation string      `json:"marginAndLiquidation"`
	Mint                 string      `json:"mint"`
	Burn                 string      `json:"burn"`
	Timestamp            json.Number `json:"timestamp"`
}

type snapshotResponse struct {
	Data *struct {
		GlpStats []poolStat `json:"glpStats"`
		FeeStats []feeStat  `json:"feeStats"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

// LatestSnapshot fetches the newest pool stat and the newest days fee buckets.
// An empty glpStats list yields a snapshot without valuation.
func (c *Client) LatestSnapshot(ctx context.Context, days int) (*models.Snapshot, error) {
	if days <= 0 {
		return nil, fmt.Errorf("subgraph: days must be positive, got %d", days)
	}
	start := c.now()

	var resp snapshotResponse
	req := gqlRequest{
		Query:     fmt.Sprintf(snapshotQuery, c.period),
		Variables: map[string]interface{}{"days": days},
	}
	if err := c.postWithRetry(ctx, req, &resp); err != nil {
		if c.l != nil {
			c.l.Error("subgraph.fetch failed",
				applogger.String("url", c.url),
				applogger.Int("days", days),
				applogger.Error(err),
			)
		}
		return nil, err
	}

	snap, err := toSnapshot(&resp)
	if err != nil {
		return nil, err
	}
	snap.FetchedAt = start.UTC()

	if c.l != nil {
		c.l.Info("subgraph.fetch ok",
			applogger.Int("days", days),
			applogger.Int("records", len(snap.Records)),
			applogger.Duration("duration_ms", c.now().Sub(start)),
		)
	}
	return snap, nil
}

func (c *Client) post(ctx context.Context, req gqlRequest, dest *snapshotResponse) error {
	*dest = snapshotResponse{}
	if err := c.http.PostJSON(ctx, c.url, req, dest); err != nil {
		return fmt.Errorf("subgraph post: %w", err)
	}
	return nil
}

// postWithRetry retries transport failures and 429/5xx answers with a
// linear backoff. GraphQL-level errors are returned immediately.
func (c *Client) postWithRetry(ctx context.Context, req gqlRequest, dest *snapshotResponse) error {
	var err error
	for i := 1; i <= c.attempts; i++ {
		err = c.post(ctx, req, dest)
		if err == nil || !xhttp.IsTemporary(err) || ctx.Err() != nil || i == c.attempts {
			break
		}
		if c.l != nil {
			c.l.Warn("subgraph.fetch retry",
				applogger.Int("attempt", i),
				applogger.Error(err),
			)
		}
		select {
		case <-time.After(time.Duration(i) * c.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func toSnapshot(resp *snapshotResponse) (*models.Snapshot, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: response without data", ErrGraphQL)
	}

	snap := &models.Snapshot{Source: SourceName}
	if len(resp.Data.GlpStats) > 0 {
		p := resp.Data.GlpStats[0]
		snap.PoolValuationRaw = p.AumInUsdg
		if p.Timestamp != "" {
			ts, err := p.Timestamp.Int64()
			if err != nil {
				return nil, fmt.Errorf("glpStats timestamp %q: %w", p.Timestamp, err)
			}
			snap.ValuationTime = ts
		}
	}

	snap.Records = make([]models.RawFeeRecord, 0, len(resp.Data.FeeStats))
	for _, f := range resp.Data.FeeStats {
		ts, err := f.Timestamp.Int64()
		if err != nil {
			return nil, fmt.Errorf("feeStats timestamp %q: %w", f.Timestamp, err)
		}
		comps := make([]string, models.ComponentCount)
		comps[models.ComponentSwap] = f.Swap
		comps[models.ComponentMarginAndLiquidation] = f.MarginAndLiquidation
		comps[models.ComponentMint] = f.Mint
		comps[models.ComponentBurn] = f.Burn
		snap.Records = append(snap.Records, models.RawFeeRecord{Timestamp: ts, Components: comps})
	}
	return snap, nil
}
