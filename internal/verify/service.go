// Package verify orchestrates a single entitlement verification: upstream
// lookup through the retry policy, membership resolution, and classification.
// Every verification is independent and stateless; the service holds only
// read-only configuration, so concurrent invocations need no coordination.
package verify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pixlverify/server/internal/entitlement"
	"github.com/pixlverify/server/internal/logger"
	"github.com/pixlverify/server/internal/metrics"
	"github.com/pixlverify/server/internal/patreon"
	"github.com/pixlverify/server/internal/retry"
)

// ErrEmptyToken reports a missing bearer credential. Checked before any
// network call is made.
var ErrEmptyToken = errors.New("verify: access token is empty")

// Service answers whether a bearer credential holds an active, sufficiently
// funded membership in the configured campaign.
type Service struct {
	client             *patreon.Client
	retry              retry.Policy
	campaignID         string
	minimumAmountCents int64
	metrics            *metrics.Metrics
}

// New builds a verification service. The retry policy should approve only
// rate-limited failures (patreon.IsRateLimited).
func New(client *patreon.Client, policy retry.Policy, campaignID string, minimumAmountCents int64, m *metrics.Metrics) *Service {
	return &Service{
		client:             client,
		retry:              policy,
		campaignID:         campaignID,
		minimumAmountCents: minimumAmountCents,
		metrics:            m,
	}
}

// Verify produces an entitlement decision for the given bearer credential.
// Upstream failures surviving the retry budget are returned unchanged for the
// transport layer to classify; data-shape anomalies always yield a decision.
func (s *Service) Verify(ctx context.Context, accessToken string) (entitlement.Decision, error) {
	if strings.TrimSpace(accessToken) == "" {
		return entitlement.Decision{}, ErrEmptyToken
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	var identity *patreon.IdentityResponse
	err := s.retry.Do(ctx, func() error {
		var callErr error
		identity, callErr = s.client.FetchIdentity(ctx, accessToken)
		return callErr
	})
	if err != nil {
		return entitlement.Decision{}, err
	}

	members := identity.Members()
	if len(members) == 0 {
		members = s.membersFallback(ctx, accessToken)
	}

	resolution := entitlement.Resolve(members, s.campaignID)
	if resolution.Duplicates > 0 {
		log.Warn().
			Int("duplicates", resolution.Duplicates).
			Str("campaign_id", s.campaignID).
			Str("record_id", resolution.Record.RecordID).
			Msg("verify.duplicate_memberships")
		if s.metrics != nil {
			s.metrics.ObserveDuplicateMemberships()
		}
	}

	decision := entitlement.Classify(resolution, s.minimumAmountCents)

	if s.metrics != nil {
		s.metrics.ObserveVerification(decision.Tag(), time.Since(start))
	}
	log.Info().
		Str("decision", decision.Tag()).
		Str("campaign_id", s.campaignID).
		Dur("elapsed", time.Since(start)).
		Msg("verify.decided")

	return decision, nil
}

// membersFallback lists the campaign's members directly. Some tokens are
// scoped for member listings but return identity responses without membership
// includes; the fallback is best effort and its failures only reduce the
// result to "no memberships found".
func (s *Service) membersFallback(ctx context.Context, accessToken string) []patreon.Member {
	var list *patreon.MemberListResponse
	err := s.retry.Do(ctx, func() error {
		var callErr error
		list, callErr = s.client.FetchCampaignMembers(ctx, accessToken, s.campaignID)
		return callErr
	})
	if err != nil {
		log := logger.FromContext(ctx)
		log.Debug().
			Err(err).
			Str("campaign_id", s.campaignID).
			Msg("verify.members_fallback_failed")
		return nil
	}
	return list.Members(s.campaignID)
}
