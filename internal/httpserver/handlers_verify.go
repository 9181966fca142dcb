package httpserver

import (
	"net/http"

	apierrors "github.com/pixlverify/server/internal/errors"
	"github.com/pixlverify/server/internal/logger"
	"github.com/pixlverify/server/pkg/responders"
)

// verifyRequest is the body of POST /verify.
type verifyRequest struct {
	AccessToken string `json:"accessToken"`
}

// verifyResponse reports the entitlement decision. Amount is in dollars and
// present only when subscribed; Reason names the denial otherwise.
type verifyResponse struct {
	IsSubscribed bool     `json:"isSubscribed"`
	Amount       *float64 `json:"amount,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// verifyEntitlement answers whether the supplied Patreon access token holds
// an active, sufficiently funded membership in the configured campaign.
// POST /verify
func (h *handlers) verifyEntitlement(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req verifyRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		log.Warn().Err(err).Msg("verify.invalid_body")
		apierrors.WriteSimpleError(w, apierrors.ErrCodeInvalidJSON, "Invalid JSON body")
		return
	}

	if req.AccessToken == "" {
		log.Warn().Msg("verify.missing_token")
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "No access token provided")
		return
	}

	decision, err := h.verifier.Verify(r.Context(), req.AccessToken)
	if err != nil {
		writeUpstreamError(w, log, "verify", err)
		return
	}

	resp := verifyResponse{IsSubscribed: decision.Entitled}
	if decision.Entitled {
		amount := float64(decision.AmountCents) / 100
		resp.Amount = &amount
	} else {
		resp.Reason = string(decision.Reason)
	}

	responders.JSON(w, http.StatusOK, resp)
}
