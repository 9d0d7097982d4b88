package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to the leaderboard service.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the service at base. A nil hc uses
// http.DefaultClient.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

// Fetch returns up to limit leaders starting at offset.
func (c *Client) Fetch(ctx context.Context, limit, offset int) ([]Leader, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out []Leader
	if err := c.get(ctx, "/leaders?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("fetch leaders: %w", err)
	}
	return out, nil
}

// Details returns the replay recorded with entry id.
func (c *Client) Details(ctx context.Context, id int64) (string, error) {
	var out struct {
		Details string `json:"details"`
	}
	if err := c.get(ctx, "/details?id="+strconv.FormatInt(id, 10), &out); err != nil {
		return "", fmt.Errorf("fetch details %d: %w", id, err)
	}
	return out.Details, nil
}

// Submit records r.
func (c *Client) Submit(ctx context.Context, r Result) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/record", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
