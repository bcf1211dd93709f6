// Package oauth implements third-party login: a static provider registry
// and the per-provider authorization-code exchange protocol.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/plankit/project-service/internal/config"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// Profile is the normalized identity returned by every provider adapter.
type Profile struct {
	ID           string
	Email        string
	Name         string
	Picture      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Provider     string
}

// normalizeFunc maps a provider-specific profile body onto a Profile.
type normalizeFunc func(raw []byte) (Profile, error)

// Adapter is the protocol client for one provider.
type Adapter struct {
	cfg         config.OAuthProviderConfig
	redirectURI string
	client      *http.Client
	normalize   normalizeFunc
}

func newAdapter(cfg config.OAuthProviderConfig, baseURL string, client *http.Client, normalize normalizeFunc) *Adapter {
	return &Adapter{
		cfg:         cfg,
		redirectURI: fmt.Sprintf("%s/auth/oauth/callback/%s", strings.TrimRight(baseURL, "/"), cfg.Name),
		client:      client,
		normalize:   normalize,
	}
}

// Name returns the provider name the adapter is registered under.
func (a *Adapter) Name() string {
	return a.cfg.Name
}

// AuthorizationURL builds the provider consent-screen URL.
func (a *Adapter) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", a.cfg.ClientID)
	params.Set("redirect_uri", a.redirectURI)
	params.Set("scope", strings.Join(a.cfg.Scopes, " "))
	params.Set("access_type", "offline")
	params.Set("prompt", "select_account")
	params.Set("state", state)
	return a.cfg.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode runs the two-step exchange: code for access token, then
// access token for profile. No retry; authorization codes are single-use.
func (a *Adapter) ExchangeCode(ctx context.Context, code string) (*Profile, error) {
	tok, err := a.exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	raw, err := a.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	profile, err := a.normalize(raw)
	if err != nil {
		return nil, apperrors.NewProfileFetchFailed(err)
	}
	profile.AccessToken = tok.AccessToken
	profile.RefreshToken = tok.RefreshToken
	if tok.ExpiresIn > 0 {
		profile.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	profile.Provider = a.cfg.Name
	return &profile, nil
}

func (a *Adapter) exchange(ctx context.Context, code string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("redirect_uri", a.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.NewTokenExchangeFailed(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewTokenExchangeFailed(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTokenExchangeFailed(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewTokenExchangeFailed(fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, apperrors.NewTokenExchangeFailed(err)
	}
	if tok.AccessToken == "" {
		return nil, apperrors.NewTokenExchangeFailed(fmt.Errorf("token response missing access_token"))
	}
	return &tok, nil
}

func (a *Adapter) fetchProfile(ctx context.Context, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.ProfileURL, nil)
	if err != nil {
		return nil, apperrors.NewProfileFetchFailed(err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProfileFetchFailed(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewProfileFetchFailed(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewProfileFetchFailed(fmt.Errorf("profile endpoint returned %d", resp.StatusCode))
	}
	return body, nil
}
