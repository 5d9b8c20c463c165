// Package sink provides the gateway management delivery sink used when
// connections are terminated by an external WebSocket gateway rather than
// the in-process hub.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/telllate/snipcast/internal/domain"
)

const postTimeout = 10 * time.Second

// Management posts payloads to individual connections through the gateway's
// connection-management endpoint, derived from the domain and stage of the
// request that carried the message.
type Management struct {
	base       string
	httpClient *http.Client
}

var _ domain.DeliverySink = (*Management)(nil)

// NewManagement creates a sink bound to https://{domainName}/{stage}.
func NewManagement(domainName, stage string) *Management {
	return &Management{
		base:       fmt.Sprintf("https://%s/%s", domainName, stage),
		httpClient: &http.Client{Timeout: postTimeout},
	}
}

// Post sends data to one connection. A 410 from the gateway means the
// connection no longer exists and maps to domain.ErrConnectionGone.
func (m *Management) Post(ctx context.Context, connectionID string, data []byte) error {
	endpoint := fmt.Sprintf("%s/@connections/%s", m.base, url.PathEscape(connectionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute post request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		return domain.ErrConnectionGone
	case resp.StatusCode >= 300:
		return fmt.Errorf("management endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
