package httpserver

import (
	"net/http"
	"net/url"

	apierrors "github.com/pixlverify/server/internal/errors"
	"github.com/pixlverify/server/internal/logger"
	"github.com/pixlverify/server/pkg/responders"
)

// patreonRedirect completes the authorization-code flow: Patreon sends the
// user agent here with a code, the code is exchanged for tokens, and the user
// agent is bounced into the app's URI scheme with the tokens (or an error
// code) in the query string. state, when present, is echoed back unchanged
// for CSRF correlation.
// GET /patreon/redirect?code=...&state=...
func (h *handlers) patreonRedirect(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		log.Warn().Msg("token.redirect_missing_code")
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "No code provided")
		return
	}

	tokens, err := h.tokens.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Str("grant", "authorization_code").Msg("token.grant_failed")
		responders.Redirect(w, h.appRedirect(url.Values{"error": {"token_exchange_failed"}}, state))
		return
	}

	query := url.Values{}
	query.Set("access_token", tokens.AccessToken)
	if tokens.RefreshToken != "" {
		query.Set("refresh_token", tokens.RefreshToken)
	}

	log.Info().Msg("token.exchange_succeeded")
	responders.Redirect(w, h.appRedirect(query, state))
}

// appRedirect builds the app-scheme redirect location, echoing state when set.
func (h *handlers) appRedirect(query url.Values, state string) string {
	if state != "" {
		query.Set("state", state)
	}
	return h.cfg.Patreon.AppRedirectURI + "?" + query.Encode()
}

// refreshRequest is the body of POST /patreon/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshResponse carries the rotated credential pair.
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshToken trades a refresh token for a fresh access/refresh pair.
// POST /patreon/refresh (API-key gated)
func (h *handlers) refreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req refreshRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		log.Warn().Err(err).Msg("token.refresh_invalid_body")
		apierrors.WriteSimpleError(w, apierrors.ErrCodeInvalidJSON, "Invalid JSON body")
		return
	}

	if req.RefreshToken == "" {
		log.Warn().Msg("token.refresh_missing_token")
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "No refresh token provided")
		return
	}

	tokens, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		log.Error().Err(err).Str("grant", "refresh_token").Msg("token.grant_failed")
		writeUpstreamError(w, log, "refresh", err)
		return
	}

	log.Info().Msg("token.refresh_succeeded")
	responders.JSON(w, http.StatusOK, refreshResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
