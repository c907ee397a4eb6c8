package flyers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cartsaver/backend/internal/domain"
)

// MaxResults caps one search call so the match engine's per-call cost
// stays bounded.
const MaxResults = 200

// Client handles communication with the external flyer-search API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	locale      string
	rateLimiter *rate.Limiter
	debug       bool
	now         func() time.Time
}

// NewClient creates a new flyer-search API client
func NewClient(apiKey, baseURL string) *Client {
	// The flyer API tolerates a couple of requests per second per key
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		locale:      "fr-CA",
		rateLimiter: limiter,
		debug:       false,
		now:         time.Now,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search runs one OR-query over the keyword set and returns active
// promotion records from the store allow-list, capped at MaxResults.
func (c *Client) Search(ctx context.Context, keywords []string) ([]domain.PromotionRecord, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/items/search", c.baseURL)
	params := url.Values{}
	params.Add("q", strings.Join(keywords, "|"))
	params.Add("locale", c.locale)
	params.Add("limit", strconv.Itoa(MaxResults))
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[FLYERS] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[FLYERS] api error (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(body))
			}
			if resp.StatusCode == http.StatusNotFound {
				return nil, nil
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFlyerAPIFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		records := mapItems(searchResp.Items, c.now(), MaxResults)
		if c.debug {
			log.Printf("[FLYERS] %d items -> %d active records for %d keywords",
				len(searchResp.Items), len(records), len(keywords))
		}
		return records, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "CartSaver/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFlyerAPIFailure, err)
	}

	return resp, nil
}
