package xtream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"iptv-channel-prober/catalog"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/utils"
)

// Client talks to an Xtream-codes provider's player_api endpoint.
type Client struct {
	Server   string
	Username string
	Password string

	httpClient *http.Client
}

func NewClient(server, username, password string) *Client {
	return &Client{
		Server:   server,
		Username: username,
		Password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) apiURL(action string, extra url.Values) string {
	params := url.Values{}
	params.Set("username", c.Username)
	params.Set("password", c.Password)
	params.Set("action", action)
	for key, vals := range extra {
		for _, val := range vals {
			params.Add(key, val)
		}
	}
	return fmt.Sprintf("http://%s/player_api.php?%s", c.Server, params.Encode())
}

func (c *Client) get(ctx context.Context, action string, extra url.Values, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(action, extra), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("User-Agent", utils.GetEnv("USER_AGENT"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %v", err)
	}

	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("error parsing response: %v", err)
	}
	return nil
}

// GetLiveStreams fetches the full live channel catalog.
func (c *Client) GetLiveStreams(ctx context.Context) ([]catalog.Channel, error) {
	var channels []catalog.Channel
	if err := c.get(ctx, "get_live_streams", nil, &channels); err != nil {
		return nil, err
	}
	logger.Default.Logf("Retrieved %d channels.", len(channels))
	return channels, nil
}

// GetLiveCategories fetches the category id to name mapping.
func (c *Client) GetLiveCategories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := c.get(ctx, "get_live_categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type epgListing struct {
	ID string `json:"id"`
}

type shortEPGResponse struct {
	Listings []epgListing `json:"epg_listings"`
}

// GetShortEPGCount returns how many upcoming EPG entries the provider
// has for a channel. This hits the API, not the stream, so it is not a
// counted media session.
func (c *Client) GetShortEPGCount(ctx context.Context, streamID int) (int, error) {
	extra := url.Values{}
	extra.Set("stream_id", fmt.Sprintf("%d", streamID))

	var response shortEPGResponse
	if err := c.get(ctx, "get_short_epg", extra, &response); err != nil {
		return 0, err
	}
	return len(response.Listings), nil
}

// StreamURL builds the direct live stream URL for a channel.
func (c *Client) StreamURL(streamID int) string {
	return fmt.Sprintf("http://%s/live/%s/%s/%d.ts", c.Server, c.Username, c.Password, streamID)
}
