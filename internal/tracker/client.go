package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/metrics"
)

// UpstreamN2YO is the metrics label of the N2YO API.
const UpstreamN2YO = "n2yo"

// Client talks to the N2YO satellite REST API.
type Client struct {
	HTTP    *http.Client
	Metrics *metrics.Collector
	BaseURL string // e.g. https://api.n2yo.com/rest/v1/satellite
	APIKey  string
}

type positionsResponse struct {
	Error     string     `json:"error,omitempty"`
	Positions []Position `json:"positions"`
}

type aboveResponse struct {
	Error string              `json:"error,omitempty"`
	Above []catalog.AbovePass `json:"above"`
}

// Positions requests future ground positions of a satellite, one per second.
func (c *Client) Positions(ctx context.Context, noradID int, obs Observer, seconds int) ([]Position, error) {
	endpoint := c.endpoint("positions",
		strconv.Itoa(noradID),
		formatFloat(obs.Latitude),
		formatFloat(obs.Longitude),
		formatFloat(obs.Altitude),
		strconv.Itoa(seconds))

	var resp positionsResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("n2yo positions: %s", resp.Error)
	}
	if len(resp.Positions) == 0 {
		return nil, ErrNoPositions
	}

	return resp.Positions, nil
}

// Above lists satellites within radius degrees of the observer's zenith.
// A category of 0 means all categories.
func (c *Client) Above(ctx context.Context, obs Observer, radius, category int) ([]catalog.AbovePass, error) {
	endpoint := c.endpoint("above",
		formatFloat(obs.Latitude),
		formatFloat(obs.Longitude),
		formatFloat(obs.Altitude),
		strconv.Itoa(radius),
		strconv.Itoa(category))

	var resp aboveResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("n2yo above: %s", resp.Error)
	}

	return resp.Above, nil
}

func (c *Client) endpoint(parts ...string) string {
	u := strings.TrimRight(c.BaseURL, "/") + "/" + strings.Join(parts, "/")
	if c.APIKey != "" {
		u += "?" + url.Values{"apiKey": {c.APIKey}}.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		c.Metrics.ObserveUpstream(UpstreamN2YO, 0)
		var uerr *url.Error
		if errors.As(err, &uerr) {
			// Drop the query, it carries the API key.
			err = uerr.Err
		}
		return fmt.Errorf("n2yo request %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.Metrics.ObserveUpstream(UpstreamN2YO, resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("n2yo status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode n2yo response: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
