package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/logging"
)

// OAuth callback results recorded in oauth_auth_total.
const (
	oauthResultSuccess = "success"
	oauthResultFailure = "failure"
	oauthResultExpired = "expired"
)

// authorizedMessage is returned once the callback stored a token.
const authorizedMessage = "Authorization successful! You can now close this tab."

// AuthHandler runs the Google OAuth web flow and stores the resulting tokens.
type AuthHandler struct {
	conf    *oauth2.Config
	tokens  google.TokenStore
	states  *StateStore
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewAuthHandler creates the login and callback handlers. The redirect URL
// of conf must use HTTPS unless it points at a loopback address.
func NewAuthHandler(conf *oauth2.Config, tokens google.TokenStore, states *StateStore, metrics *instrumentation.Metrics, logger *slog.Logger) (*AuthHandler, error) {
	if conf == nil {
		return nil, fmt.Errorf("oauth config is required")
	}
	if err := validateHTTPSRequirement(conf.RedirectURL); err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if states == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		conf:    conf,
		tokens:  tokens,
		states:  states,
		metrics: metrics,
		logger:  logging.WithOperation(logger, "oauth"),
	}, nil
}

// Login redirects to the Google consent screen for the account named by the
// account query parameter.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		account = google.DefaultAccount
	}
	if err := google.ValidateAccountName(account); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := h.states.Issue(account)
	h.logger.Info("starting oauth login", logging.AccountHash(account))
	http.Redirect(w, r, google.AuthCodeURL(h.conf, state), http.StatusFound)
}

// Callback exchanges the authorization code and saves the token for the
// account the login was started for.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if reason := q.Get("error"); reason != "" {
		h.metrics.RecordOAuthAuth(ctx, oauthResultFailure)
		writeError(w, http.StatusBadRequest, "authorization denied: "+reason)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.metrics.RecordOAuthAuth(ctx, oauthResultFailure)
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	account, err := h.states.Consume(q.Get("state"))
	if err != nil {
		h.metrics.RecordOAuthAuth(ctx, oauthResultExpired)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.conf.Exchange(ctx, code)
	if err != nil {
		h.metrics.RecordOAuthAuth(ctx, oauthResultFailure)
		h.logger.Error("token exchange failed", logging.AccountHash(account), logging.Err(err))
		writeError(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	if err := h.tokens.Save(ctx, account, token); err != nil {
		h.metrics.RecordOAuthAuth(ctx, oauthResultFailure)
		h.logger.Error("failed to save token", logging.AccountHash(account), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "failed to store credentials")
		return
	}

	h.metrics.RecordOAuthAuth(ctx, oauthResultSuccess)
	h.logger.Info("oauth login completed", logging.AccountHash(account))
	writeJSON(w, http.StatusOK, map[string]string{
		"message": authorizedMessage,
		"account": account,
	})
}

// validateHTTPSRequirement allows plain HTTP only for loopback redirect URLs
// (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(redirectURL string) error {
	if redirectURL == "" {
		return fmt.Errorf("redirect URL cannot be empty")
	}

	u, err := url.Parse(redirectURL)
	if err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth redirect requires HTTPS (got: %s). Use HTTPS or localhost for development", redirectURL)
		}
	default:
		return errors.New("invalid redirect URL scheme: " + u.Scheme + ". Must be http (localhost only) or https")
	}

	return nil
}
