package patreon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixlverify/server/internal/circuitbreaker"
	"github.com/pixlverify/server/internal/config"
)

const identityDoc = `{
	"data": {"id": "u1", "type": "user"},
	"included": [
		{
			"id": "m1",
			"type": "member",
			"attributes": {"patron_status": "active_patron", "currently_entitled_amount_cents": 999},
			"relationships": {"campaign": {"data": {"id": "42", "type": "campaign"}}}
		},
		{"id": "c42", "type": "campaign"},
		{
			"id": "m2",
			"type": "member",
			"attributes": {"patron_status": null}
		}
	]
}`

func testClientConfig(baseURL string) config.PatreonConfig {
	return config.PatreonConfig{
		APIBaseURL:     baseURL,
		UserAgent:      "PixL - Subscription Check",
		RequestTimeout: config.Duration{Duration: 5 * time.Second},
	}
}

func passthroughBreakers() *circuitbreaker.Manager {
	return circuitbreaker.NewManagerFromConfig(config.CircuitBreakerConfig{Enabled: false})
}

func TestFetchIdentityParsesMembers(t *testing.T) {
	var gotAuth, gotAgent, gotInclude string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotInclude = r.URL.Query().Get("include")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(identityDoc))
	}))
	defer upstream.Close()

	client := NewClient(testClientConfig(upstream.URL), passthroughBreakers(), nil)

	identity, err := client.FetchIdentity(context.Background(), "tok_secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok_secret" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotAgent != "PixL - Subscription Check" {
		t.Errorf("expected configured user agent, got %q", gotAgent)
	}
	if gotInclude != "memberships.campaign" {
		t.Errorf("expected membership includes requested, got %q", gotInclude)
	}

	members := identity.Members()
	if len(members) != 2 {
		t.Fatalf("expected 2 member records (campaign resource skipped), got %d", len(members))
	}

	first := members[0]
	if first.RecordID != "m1" || first.CampaignID != "42" {
		t.Errorf("unexpected first member: %+v", first)
	}
	if first.PatronStatus == nil || *first.PatronStatus != StatusActivePatron {
		t.Errorf("expected active_patron status, got %v", first.PatronStatus)
	}
	if first.EntitledAmountCents == nil || *first.EntitledAmountCents != 999 {
		t.Errorf("expected 999 cents, got %v", first.EntitledAmountCents)
	}

	second := members[1]
	if second.CampaignID != "" {
		t.Errorf("member without campaign link should have empty campaign id, got %q", second.CampaignID)
	}
	if second.PatronStatus != nil {
		t.Errorf("null patron_status should normalize to nil, got %v", second.PatronStatus)
	}
	if second.EntitledAmountCents != nil {
		t.Errorf("absent amount should normalize to nil, got %v", second.EntitledAmountCents)
	}
}

func TestFetchIdentityNon2xxReturnsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"title":"invalid token"}]}`))
	}))
	defer upstream.Close()

	client := NewClient(testClientConfig(upstream.URL), passthroughBreakers(), nil)

	_, err := client.FetchIdentity(context.Background(), "tok_expired")

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}
	if ue.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", ue.StatusCode)
	}
	if ue.Body == "" {
		t.Error("expected upstream body retained for server-side logs")
	}
}

func TestFetchIdentityTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	client := NewClient(testClientConfig(upstream.URL), passthroughBreakers(), nil)

	_, err := client.FetchIdentity(context.Background(), "tok")

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError for transport failure, got %T: %v", err, err)
	}
	if ue.StatusCode != 0 {
		t.Errorf("transport failures carry no status, got %d", ue.StatusCode)
	}
}

func TestFetchCampaignMembersImpliesCampaign(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns/42/members" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"id": "m1", "type": "member", "attributes": {"patron_status": "active_patron", "currently_entitled_amount_cents": 99}}
		]}`))
	}))
	defer upstream.Close()

	client := NewClient(testClientConfig(upstream.URL), passthroughBreakers(), nil)

	list, err := client.FetchCampaignMembers(context.Background(), "tok", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	members := list.Members("42")
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if members[0].CampaignID != "42" {
		t.Errorf("expected implied campaign id 42, got %q", members[0].CampaignID)
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(&UpstreamError{StatusCode: 429}) {
		t.Error("429 should be rate limited")
	}
	if IsRateLimited(&UpstreamError{StatusCode: 500}) {
		t.Error("500 is not rate limited")
	}
	if IsRateLimited(errors.New("plain")) {
		t.Error("non-upstream errors are not rate limited")
	}
}
