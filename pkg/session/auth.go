package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/natserract/sfdclib/pkg/config"
	httpclient "github.com/natserract/sfdclib/pkg/http"
	"go.uber.org/zap"
)

const (
	tokenPath  = "/services/oauth2/token"
	revokePath = "/services/oauth2/revoke"

	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	// jwtLifetime is the validity of the signed assertion, not of the issued token
	jwtLifetime = 3 * time.Minute

	loginMaxTries = 3
)

// Login requests an access token from the OAuth token endpoint using the
// configured grant and stores it together with the instance URL.
// Network failures and 5xx responses are retried with backoff.
func (s *Session) Login(ctx context.Context) error {
	endpoint, err := httpclient.BuildURL(s.config.LoginURL, tokenPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build token URL: %w", err)
	}

	form, err := s.grantForm()
	if err != nil {
		return err
	}

	s.logger.Info("Authenticating with Salesforce",
		zap.String("url", endpoint),
		zap.String("grant_type", s.config.GrantType))

	resp, err := s.httpClient.Do(httpclient.RequestOptions{
		Method:   http.MethodPost,
		URL:      endpoint,
		Headers:  map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:     form,
		Context:  ctx,
		MaxTries: loginMaxTries,
	})
	if err != nil {
		s.logger.Error("Authentication request failed", zap.Error(err), zap.String("url", endpoint))
		return fmt.Errorf("authentication request failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized:
		var oauthErr OAuthErr
		if err := json.Unmarshal(resp.Body, &oauthErr); err != nil || oauthErr.Code == "" {
			return fmt.Errorf("authentication failed with status %d: %s", resp.StatusCode, resp.Text())
		}
		s.logger.Error("Authentication rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("error", oauthErr.Code))
		return &oauthErr
	default:
		s.logger.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", resp.Text()))
		return fmt.Errorf("authentication failed with status %d: %s", resp.StatusCode, resp.Text())
	}

	var authResp AuthResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		s.logger.Error("Failed to parse authentication response", zap.Error(err))
		return fmt.Errorf("failed to parse authentication response: %w", err)
	}
	if authResp.AccessToken == "" || authResp.InstanceURL == "" {
		return fmt.Errorf("authentication response is missing access_token or instance_url")
	}

	s.Restore(authResp.InstanceURL, authResp.AccessToken)

	s.logger.Info("Successfully authenticated",
		zap.String("instance_url", authResp.InstanceURL),
		zap.String("token_type", authResp.TokenType))

	return nil
}

func (s *Session) grantForm() (url.Values, error) {
	form := url.Values{"client_id": {s.config.ClientID}}

	switch s.config.GrantType {
	case config.GrantPassword:
		form.Set("grant_type", "password")
		form.Set("client_secret", s.config.ClientSecret)
		form.Set("username", s.config.Username)
		form.Set("password", s.config.Password)
	case config.GrantClientCredentials:
		form.Set("grant_type", "client_credentials")
		form.Set("client_secret", s.config.ClientSecret)
	case config.GrantJWTBearer:
		assertion, err := s.signedAssertion()
		if err != nil {
			return nil, err
		}
		form = url.Values{
			"grant_type": {jwtBearerGrant},
			"assertion":  {assertion},
		}
	default:
		return nil, fmt.Errorf("unsupported grant type %q", s.config.GrantType)
	}

	return form, nil
}

// signedAssertion builds the JWT of the "OAuth 2.0 JWT Bearer Flow for
// Server-to-Server Integration".
// see https://help.salesforce.com/articleView?id=remoteaccess_oauth_jwt_flow.htm
func (s *Session) signedAssertion() (string, error) {
	if s.privateKey == nil {
		return "", fmt.Errorf("jwt bearer grant requires a private key")
	}

	token := jwt.NewWithClaims(
		jwt.SigningMethodRS256,
		jwt.StandardClaims{
			Issuer:    s.config.ClientID,
			Audience:  strings.TrimSuffix(s.config.LoginURL, "/"),
			Subject:   s.config.Username,
			ExpiresAt: time.Now().Add(jwtLifetime).UTC().Unix(),
		},
	)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

// Logout revokes the access token and disconnects the session. The session
// is disconnected even when the revoke call fails.
func (s *Session) Logout(ctx context.Context) error {
	token := s.SessionID()
	if token == "" {
		return nil
	}
	endpoint := s.ConstructURL(revokePath)
	s.Restore("", "")

	resp, err := s.httpClient.Post(ctx, endpoint,
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		url.Values{"token": {token}})
	if err != nil {
		s.logger.Warn("Token revoke request failed", zap.Error(err))
		return fmt.Errorf("token revoke request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Token revoke failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", resp.Text()))
		return fmt.Errorf("token revoke failed with status %d: %s", resp.StatusCode, resp.Text())
	}

	s.logger.Info("Session logged out")
	return nil
}
