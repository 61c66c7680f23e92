// Package rest wraps the Salesforce REST API. Each method is a single round
// trip through the caller's session: the URL is resolved under
// /services/data/v{version}, a bearer token header is attached and the JSON
// body is validated before it is handed back.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "github.com/natserract/sfdclib/pkg/http"
	"github.com/natserract/sfdclib/pkg/salesforce"
	"go.uber.org/zap"
)

const (
	apiBaseURI          = "/services/data/v%s"
	soqlQueryURI        = "/query/?%s"
	recordCountURI      = "/limits/recordCount"
	recordCountQueryURI = "/limits/recordCount?%s"

	// recordCountMinVersion is the first API version serving /limits/recordCount.
	recordCountMinVersion = 40.0
)

// Client is a thin wrapper over the Salesforce REST API
type Client struct {
	session salesforce.Session
	logger  *zap.Logger
}

// New creates a REST client on a connected session
func New(session salesforce.Session, logger *zap.Logger) (*Client, error) {
	if session == nil || !session.IsConnected() {
		return nil, salesforce.ErrInvalidState
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		session: session,
		logger:  logger,
	}, nil
}

func (c *Client) apiURI() string {
	return fmt.Sprintf(apiBaseURI, c.session.APIVersion())
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization":   "Bearer " + c.session.SessionID(),
		"Accept-Encoding": "gzip",
		"Content-Type":    "application/json",
	}
}

func (c *Client) url(uri string) string {
	return c.session.ConstructURL(c.apiURI() + uri)
}

// Get issues a GET for uri and decodes the JSON response into result.
// A nil result only validates that the body is JSON.
func (c *Client) Get(ctx context.Context, uri string, result interface{}) error {
	_, err := c.get(ctx, "rest get", c.url(uri), result)
	return err
}

func (c *Client) get(ctx context.Context, op, endpoint string, result interface{}) (*httpclient.Response, error) {
	c.logger.Debug("Making GET request", zap.String("endpoint", endpoint))
	resp, err := c.session.Get(ctx, endpoint, c.headers())
	if err != nil {
		c.logger.Error("GET request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, fmt.Errorf("%s %s: %w", op, endpoint, err)
	}
	if resp == nil {
		return nil, errNoResponse(op)
	}
	return resp, c.parseResponse(op, resp, result)
}

// Post sends data as a JSON body to uri and decodes the JSON response into result.
func (c *Client) Post(ctx context.Context, uri string, data interface{}, result interface{}) error {
	const op = "rest post"

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
	}

	endpoint := c.url(uri)
	c.logger.Debug("Making POST request", zap.String("endpoint", endpoint))
	resp, err := c.session.Post(ctx, endpoint, c.headers(), body)
	if err != nil {
		c.logger.Error("POST request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return fmt.Errorf("%s %s: %w", op, endpoint, err)
	}
	if resp == nil {
		return errNoResponse(op)
	}
	return c.parseResponse(op, resp, result)
}

// Delete issues a DELETE for uri. Only 204 No Content counts as success.
func (c *Client) Delete(ctx context.Context, uri string) error {
	const op = "rest delete"

	endpoint := c.url(uri)
	c.logger.Debug("Making DELETE request", zap.String("endpoint", endpoint))
	resp, err := c.session.Delete(ctx, endpoint, c.headers())
	if err != nil {
		c.logger.Error("DELETE request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return fmt.Errorf("%s %s: %w", op, endpoint, err)
	}
	if resp == nil {
		return errNoResponse(op)
	}

	if resp.StatusCode != http.StatusNoContent {
		c.logger.Error("Delete failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", resp.Text()))
		return salesforce.NewProtocolError(op, resp.StatusCode, resp.Body,
			fmt.Errorf("status code is not %d", http.StatusNoContent))
	}
	return nil
}

func errNoResponse(op string) error {
	return salesforce.NewProtocolError(op, 0, nil, errors.New("session returned no response"))
}

func (c *Client) parseResponse(op string, resp *httpclient.Response, result interface{}) error {
	if !json.Valid(resp.Body) {
		c.logger.Error("Response is not JSON",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", resp.Text()))
		return salesforce.NewProtocolError(op, resp.StatusCode, resp.Body, fmt.Errorf("response is not JSON"))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		c.logger.Error("Failed to decode response", zap.String("op", op), zap.Error(err))
		return salesforce.NewProtocolError(op, resp.StatusCode, resp.Body, err)
	}
	return nil
}

// SOQLQuery runs query through the /query resource.
func (c *Client) SOQLQuery(ctx context.Context, query string) (*QueryResult, error) {
	uri := fmt.Sprintf(soqlQueryURI, url.Values{"q": {query}}.Encode())

	var res QueryResult
	if err := c.Get(ctx, uri, &res); err != nil {
		return nil, err
	}

	c.logger.Debug("SOQL query completed",
		zap.Int("total_size", res.TotalSize),
		zap.Bool("done", res.Done),
		zap.Int("records", len(res.Records)))

	return &res, nil
}

// QueryMore fetches the next batch of a query whose previous result was not done.
// nextRecordsURL is taken verbatim from QueryResult.NextRecordsURL.
func (c *Client) QueryMore(ctx context.Context, nextRecordsURL string) (*QueryResult, error) {
	if nextRecordsURL == "" {
		return nil, fmt.Errorf("rest query more: empty next records url")
	}
	if !strings.HasPrefix(nextRecordsURL, "/services/data/") {
		nextRecordsURL = c.apiURI() + nextRecordsURL
	}

	var res QueryResult
	if _, err := c.get(ctx, "rest query more", c.session.ConstructURL(nextRecordsURL), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetObjectCount lists record counts for objects, or for every object when
// none are given. Requires API version 40.0 or later.
func (c *Client) GetObjectCount(ctx context.Context, objects ...string) (*RecordCountResult, error) {
	const op = "rest record count"

	if err := salesforce.RequireAPIVersion(c.session.APIVersion(), recordCountMinVersion); err != nil {
		c.logger.Error("Record count is not available", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uri := recordCountURI
	if len(objects) > 0 {
		uri = fmt.Sprintf(recordCountQueryURI, url.Values{"sObjects": {strings.Join(objects, ",")}}.Encode())
	}

	resp, err := c.get(ctx, op, c.url(uri), nil)
	if err != nil {
		return nil, err
	}
	if !isJSONObject(resp.Body) {
		c.logger.Error("Record count response is not an object", zap.String("response", resp.Text()))
		return nil, salesforce.NewProtocolError(op, resp.StatusCode, resp.Body, fmt.Errorf("response is not a JSON object"))
	}

	var res RecordCountResult
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, salesforce.NewProtocolError(op, resp.StatusCode, resp.Body, err)
	}

	c.logger.Debug("Record counts retrieved", zap.Int("objects", len(res.SObjects)))
	return &res, nil
}

func isJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
