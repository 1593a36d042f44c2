// ABOUTME: HTTP client for the exchange rate service
// ABOUTME: Single attempt per lookup with an enforced timeout and one failure kind

package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTimeout applies when NewClient is given a non-positive timeout
const DefaultTimeout = 5 * time.Second

// maxBodySize caps how much of a response is read
const maxBodySize = 64 << 10

// rateResponse is the success body of GET /rate
type rateResponse struct {
	Rate *decimal.Decimal `json:"rate"`
}

// Client queries the rate service over HTTP
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewClient creates a client for the rate endpoint, e.g. http://rates:5000/rate
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "rates"),
	}
}

// Lookup returns the quote for currency. Every failure wraps ErrUnavailable.
func (c *Client) Lookup(ctx context.Context, currency string) (Quote, error) {
	code := Normalize(currency)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: parsing endpoint: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("currency", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("rate lookup failed", "currency", code, "error", err)
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Quote{}, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("rate service returned error",
			"currency", code,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(body)),
		)
		return Quote{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if parsed.Rate == nil || !parsed.Rate.IsPositive() {
		return Quote{}, fmt.Errorf("%w: no rate for %s", ErrUnavailable, code)
	}

	c.logger.Debug("rate lookup", "currency", code, "rate", parsed.Rate.String())
	return Quote{Currency: code, Rate: *parsed.Rate}, nil
}

// Health probes the service's /health endpoint next to the rate endpoint
func (c *Client) Health(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parsing endpoint: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/rate") + "/health"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
