package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

const userAgent = "BrainMint"

// restClient is a thin GET-only JSON client for the hosts that have no
// Go SDK in this module. It retries HTTP 429 with backoff and reports
// 401 as an AuthError.
type restClient struct {
	platform   model.Platform
	baseURL    string
	httpClient *http.Client
	maxRetries int

	// authorize sets the credential header for a token.
	authorize func(req *http.Request, token string)
}

func newRESTClient(
	platform model.Platform,
	baseURL string,
	hc *http.Client,
	authorize func(*http.Request, string),
) *restClient {
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	return &restClient{
		platform:   platform,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		maxRetries: 3,
		authorize:  authorize,
	}
}

// hostError is the error envelope GitLab ({"message"}) and Bitbucket
// ({"error": {"message"}}) send.
type hostError struct {
	Message any `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e hostError) text() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}
	if e.Message != nil {
		return fmt.Sprint(e.Message)
	}
	return ""
}

// get performs an authenticated GET and unmarshals the JSON response.
func (c *restClient) get(ctx context.Context, path, token string, result any) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		c.authorize(req, token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request GET %s: %w", path, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429) on GET %s", path)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{
				Platform: c.platform,
				Message:  fmt.Sprintf("authentication failed (401): check the access token for %s", c.baseURL),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var hostErr hostError
			if json.Unmarshal(body, &hostErr) == nil && hostErr.text() != "" {
				return fmt.Errorf("%s API error (%d) on GET %s: %s",
					c.platform, resp.StatusCode, path, hostErr.text())
			}
			return fmt.Errorf("unexpected status %d on GET %s: %s",
				resp.StatusCode, path, strings.TrimSpace(string(body)))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
