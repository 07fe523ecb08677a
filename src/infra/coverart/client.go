package coverart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

const defaultBaseURL = "https://coverartarchive.org"

// Client fetches front covers from the Cover Art Archive.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Cover Art Archive client.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// FetchFront fetches the front cover for a release. The archive
// answers with a redirect to the image bytes; the http client follows
// it. A 404 means the release has no cover and maps to ErrNoMatches.
func (c *Client) FetchFront(ctx context.Context, releaseID string, size music.CoverSize) (*music.CoverArt, error) {
	requestURL := fmt.Sprintf("%s/release/%s/front", c.baseURL, releaseID)
	if size != music.CoverSizeOriginal && size != "" {
		requestURL += "-" + string(size)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cover art request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cover art network error: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, music.ErrNoMatches
	default:
		return nil, &music.ContractViolationError{Expected: "HTTP 200", Actual: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover art body: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return &music.CoverArt{Data: data, MimeType: mime}, nil
}
