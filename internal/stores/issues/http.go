// internal/stores/issues/http.go
package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"delivery-engine/internal/common/config"
	"delivery-engine/internal/models"
)

// HTTPGateway submits issues to a real support endpoint. Used when the
// gateway config carries a base URL; the simulated gateway covers everything
// else.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPGateway creates a gateway POSTing reports to <base_url>/issues.
func NewHTTPGateway(cfg config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (g *HTTPGateway) Submit(ctx context.Context, issue models.Issue) error {
	body, err := json.Marshal(issue)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/issues", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("support gateway answered %d: %s",
			resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}
