// Package session provides an OAuth-authenticated implementation of
// salesforce.Session. A Session logs in against the Salesforce token endpoint
// and then serves as the transport for the REST and SOAP clients.
package session

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dgrijalva/jwt-go"
	"github.com/natserract/sfdclib/pkg/config"
	httpclient "github.com/natserract/sfdclib/pkg/http"
	"github.com/natserract/sfdclib/pkg/salesforce"
	"go.uber.org/zap"
)

// Session holds the connection state of one Salesforce login
type Session struct {
	config     *config.Config
	httpClient *httpclient.Client
	logger     *zap.Logger
	privateKey *rsa.PrivateKey

	mu          sync.RWMutex
	accessToken string
	instanceURL string
}

var _ salesforce.Session = &Session{}

// New creates a session with default production logger
func New(cfg *config.Config) (*Session, error) {
	logger, _ := zap.NewProduction()
	return NewWithLogger(cfg, logger)
}

// NewWithLogger creates a session with a custom logger
func NewWithLogger(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	return NewWithHTTPClient(cfg, httpclient.NewClientWithLogger(logger), logger)
}

// NewWithHTTPClient creates a session on an existing HTTP client
func NewWithHTTPClient(cfg *config.Config, httpClient *httpclient.Client, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}

	if cfg.GrantType == config.GrantJWTBearer {
		pemBytes, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		if s.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(pemBytes); err != nil {
			logger.Error("Error parsing private key file to an RSA private key", zap.Error(err))
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
	}

	return s, nil
}

// Restore attaches an access token obtained elsewhere, e.g. from a previous
// login, without calling the token endpoint.
func (s *Session) Restore(instanceURL, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instanceURL = strings.TrimSuffix(instanceURL, "/")
	s.accessToken = accessToken
}

func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != "" && s.instanceURL != ""
}

func (s *Session) APIVersion() string {
	return s.config.APIVersion
}

func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) ServerURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instanceURL
}

// ConstructURL resolves path against the instance URL. Absolute URLs are
// returned unchanged.
func (s *Session) ConstructURL(path string) string {
	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.ServerURL() + path
}

func (s *Session) Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error) {
	return s.httpClient.Get(ctx, url, headers)
}

func (s *Session) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpclient.Response, error) {
	opts := httpclient.RequestOptions{
		Method:  http.MethodPost,
		URL:     url,
		Headers: headers,
		Context: ctx,
	}
	if body != nil {
		opts.Body = body
	}
	return s.httpClient.Do(opts)
}

func (s *Session) Delete(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error) {
	return s.httpClient.Delete(ctx, url, headers)
}
