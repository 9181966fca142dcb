package patreon

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/pixlverify/server/internal/circuitbreaker"
	"github.com/pixlverify/server/internal/config"
	"github.com/pixlverify/server/internal/metrics"
)

// Tokens is the credential pair handed back to the client app after a grant.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// TokenClient performs authorization-code and refresh-token grants against
// the Patreon token endpoint using the confidential client credentials.
type TokenClient struct {
	conf     *oauth2.Config
	http     *http.Client
	breakers *circuitbreaker.Manager
	metrics  *metrics.Metrics
}

// NewTokenClient builds a token client from configuration. Patreon expects
// client credentials in the form body rather than basic auth, hence
// AuthStyleInParams.
func NewTokenClient(cfg config.PatreonConfig, breakers *circuitbreaker.Manager, m *metrics.Metrics) *TokenClient {
	return &TokenClient{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http: &http.Client{
			Timeout: cfg.RequestTimeout.Duration,
		},
		breakers: breakers,
		metrics:  m,
	}
}

// Exchange trades an authorization code for an access/refresh token pair.
func (c *TokenClient) Exchange(ctx context.Context, code string) (Tokens, error) {
	tokens, err := c.grant(ctx, func(ctx context.Context) (*oauth2.Token, error) {
		return c.conf.Exchange(ctx, code)
	})
	c.observeGrant("authorization_code", err)
	return tokens, err
}

// Refresh trades a refresh token for a fresh access/refresh token pair.
// Patreon rotates refresh tokens, so the returned pair replaces the old one.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	tokens, err := c.grant(ctx, func(ctx context.Context) (*oauth2.Token, error) {
		source := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
		return source.Token()
	})
	c.observeGrant("refresh_token", err)
	return tokens, err
}

func (c *TokenClient) grant(ctx context.Context, fn func(context.Context) (*oauth2.Token, error)) (Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	result, err := c.breakers.Execute(circuitbreaker.ServiceTokenEndpoint, func() (interface{}, error) {
		tok, err := fn(ctx)
		if err != nil {
			return nil, normalizeGrantError(ctx, err)
		}
		return tok, nil
	})
	if err != nil {
		return Tokens{}, err
	}

	tok := result.(*oauth2.Token)
	return Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

// normalizeGrantError converts oauth2 failures into the same UpstreamError
// shape the API client produces, so callers classify both paths identically.
func normalizeGrantError(ctx context.Context, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		body := re.Body
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &UpstreamError{StatusCode: status, Body: string(body)}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &UpstreamError{Body: err.Error()}
}

func (c *TokenClient) observeGrant(grant string, err error) {
	if c.metrics != nil {
		c.metrics.ObserveTokenGrant(grant, err)
	}
}

// CloseIdleConnections releases pooled token-endpoint connections.
func (c *TokenClient) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
