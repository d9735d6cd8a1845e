// Package safebrowsing checks URLs against the Google Safe Browsing v4
// threatMatches:find endpoint before they are published in job postings.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// Checker is the verdict contract the job service consumes.
type Checker interface {
	// IsSafe reports whether the URL is clear of known threats. A lookup
	// failure counts as unsafe.
	IsSafe(ctx context.Context, url string) (bool, error)
}

type Client struct {
	APIKey     string
	ClientID   string
	HTTPClient *http.Client

	// Endpoint overrides the Google API URL in tests.
	Endpoint string
}

type threatEntry struct {
	URL string `json:"url"`
}

type findRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type findResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

// IsSafe posts a single-URL lookup. Any match, transport failure, or non-2xx
// status yields an unsafe verdict; only a clean empty response is safe.
func (c *Client) IsSafe(ctx context.Context, url string) (bool, error) {
	req := findRequest{}
	req.Client.ClientID = c.ClientID
	req.Client.ClientVersion = "1.0"
	req.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"}
	req.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	req.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	req.ThreatInfo.ThreatEntries = []threatEntry{{URL: url}}

	body, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("encode lookup: %w", err)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+c.APIKey, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build lookup request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("safe browsing lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, nil
	}

	var out findResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode lookup response: %w", err)
	}
	return len(out.Matches) == 0, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
