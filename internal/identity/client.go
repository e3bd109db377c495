package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskplanner/internal/apperr"
)

// Client verifies tokens by calling the identity gateway's whoami
// endpoint. Results are never cached and failed calls are never
// retried here; retrying is the caller's decision.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Verify(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return Identity{}, apperr.Internal(fmt.Errorf("building whoami request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection refused, DNS failure and timeouts all land here.
		// The caller should retry later, not re-authenticate.
		return Identity{}, apperr.Unavailable("auth service unavailable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// The timeout can also fire mid-body; that is still the
		// gateway being unavailable, not a protocol error.
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Identity{}, apperr.Unavailable("auth service unavailable", err)
		}
		var ident Identity
		if err := json.Unmarshal(body, &ident); err != nil {
			return Identity{}, apperr.Internal(fmt.Errorf("decoding whoami response: %w", err))
		}
		return ident, nil
	case http.StatusUnauthorized:
		return Identity{}, apperr.Unauthorized("invalid or expired token")
	default:
		return Identity{}, apperr.Internal(fmt.Errorf("auth service returned status %d", resp.StatusCode))
	}
}
