package patreon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pixlverify/server/internal/circuitbreaker"
	"github.com/pixlverify/server/internal/config"
	"github.com/pixlverify/server/internal/metrics"
)

// memberFields is the sparse fieldset requested for member resources. Keeping
// it minimal avoids pulling PII the verifier has no use for.
const memberFields = "currently_entitled_amount_cents,patron_status"

// maxErrorBody bounds how much of an upstream error body is retained for logs.
const maxErrorBody = 2048

// Client issues authenticated read-only calls against the Patreon API v2.
// It knows nothing about entitlement semantics and performs no retries;
// rate-limit retries are the retry policy's concern.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	breakers  *circuitbreaker.Manager
	metrics   *metrics.Metrics
}

// NewClient builds a Patreon API client from configuration.
func NewClient(cfg config.PatreonConfig, breakers *circuitbreaker.Manager, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.APIBaseURL, "/"),
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Timeout: cfg.RequestTimeout.Duration,
		},
		breakers: breakers,
		metrics:  m,
	}
}

// FetchIdentity looks up the token holder's identity with membership includes.
// The campaign relationship is expanded so each member record can be matched
// against the configured campaign.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*IdentityResponse, error) {
	query := url.Values{}
	query.Set("include", "memberships.campaign")
	query.Set("fields[member]", memberFields)

	var identity IdentityResponse
	if err := c.get(ctx, "identity", "/identity?"+query.Encode(), accessToken, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// FetchCampaignMembers lists the members of a campaign. Used as a fallback
// when the identity response carries no membership includes but the token is
// scoped for campaign member listings.
func (c *Client) FetchCampaignMembers(ctx context.Context, accessToken, campaignID string) (*MemberListResponse, error) {
	query := url.Values{}
	query.Set("fields[member]", memberFields)

	path := fmt.Sprintf("/campaigns/%s/members?%s", url.PathEscape(campaignID), query.Encode())

	var list MemberListResponse
	if err := c.get(ctx, "campaign_members", path, accessToken, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// get performs a single authenticated GET through the circuit breaker and
// decodes the response into dest. Any non-2xx status or transport failure is
// returned as *UpstreamError. The bearer credential is never logged.
func (c *Client) get(ctx context.Context, endpoint, path, accessToken string, dest any) error {
	result, err := c.breakers.Execute(circuitbreaker.ServicePatreonAPI, func() (interface{}, error) {
		return nil, c.do(ctx, endpoint, path, accessToken, dest)
	})
	_ = result
	return err
}

func (c *Client) do(ctx context.Context, endpoint, path, accessToken string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("patreon: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	c.observe(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("malformed response body: %v", err)}
	}
	return nil
}

func (c *Client) observe(endpoint string, statusCode int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveUpstream(endpoint, statusCode, duration)
	}
}

// CloseIdleConnections releases pooled upstream connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
