package acoustid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

const defaultBaseURL = "https://api.acoustid.org/v2/lookup"

// Client looks up fingerprints against the AcoustID web service.
type Client struct {
	baseURL    string
	clientKey  string
	httpClient *http.Client
}

// NewClient creates an AcoustID client with the given application key.
func NewClient(clientKey string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		clientKey: clientKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub.
func NewClientWithBaseURL(clientKey, baseURL string) *Client {
	c := NewClient(clientKey)
	c.baseURL = baseURL
	return c
}

// Lookup queries AcoustID for a fingerprint and returns the domain
// identifications, fanned out per release group.
func (c *Client) Lookup(ctx context.Context, fingerprint string, duration int) ([]music.Identification, error) {
	params := url.Values{}
	params.Set("client", c.clientKey)
	params.Set("duration", fmt.Sprintf("%d", duration))
	params.Set("fingerprint", fingerprint)

	// The meta field separator is a literal '+'. Encoding it as %2B
	// makes the service silently drop all recording metadata, so the
	// meta parameter is appended outside of url.Values.
	requestURL := fmt.Sprintf("%s?%s&meta=recordings+releasegroups+compress", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build AcoustID request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acoustid network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, music.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &music.ContractViolationError{
			Expected: "HTTP 200",
			Actual:   resp.Status,
		}
	}

	var response lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to parse AcoustID response: %w", err)
	}

	identifications, err := toIdentifications(response)
	if err != nil {
		return nil, err
	}

	slog.Debug("AcoustID lookup done", "candidates", len(identifications))
	return identifications, nil
}

// LookupMatches is the verifier-facing variant: it returns one
// FingerprintMatch per recording with all its releases attached.
func (c *Client) LookupMatches(ctx context.Context, fingerprint string, duration int) ([]music.FingerprintMatch, error) {
	params := url.Values{}
	params.Set("client", c.clientKey)
	params.Set("duration", fmt.Sprintf("%d", duration))
	params.Set("fingerprint", fingerprint)
	requestURL := fmt.Sprintf("%s?%s&meta=recordings+releasegroups+compress", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build AcoustID request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acoustid network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, music.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &music.ContractViolationError{Expected: "HTTP 200", Actual: resp.Status}
	}

	var response lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to parse AcoustID response: %w", err)
	}

	return toMatches(response)
}
