package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

const (
	defaultBaseURL = "https://musicbrainz.org/ws/2"
	userAgent      = "tonegarden/1.0 (https://github.com/contre95/tonegarden)"
)

// Client fetches recordings from the MusicBrainz web service. The
// caller is responsible for rate limiting; MusicBrainz allows one
// request per second and bans clients without a descriptive User-Agent.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a MusicBrainz client.
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

// LookupRecording fetches a recording by MusicBrainz id and adapts it
// to the domain type.
func (c *Client) LookupRecording(ctx context.Context, recordingID string) (*music.IdentifiedTrack, error) {
	requestURL := fmt.Sprintf("%s/recording/%s?fmt=json&inc=artists+releases+media+tags", c.baseURL, recordingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build MusicBrainz request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz network error: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, music.ErrRateLimited
	case http.StatusNotFound:
		return nil, music.ErrNoMatches
	default:
		return nil, &music.ContractViolationError{Expected: "HTTP 200", Actual: resp.Status}
	}

	var rec recordingResponse
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to parse MusicBrainz response: %w", err)
	}

	track := toIdentifiedTrack(rec)
	slog.Debug("MusicBrainz recording fetched", "recording", recordingID, "album", track.Album)
	return &track, nil
}
