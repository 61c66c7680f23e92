// Package soap wraps the describe calls of the Salesforce SOAP API
// (enterprise WSDL). Responses are returned as raw XML text.
package soap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/natserract/sfdclib/pkg/salesforce"
	"go.uber.org/zap"
)

const soapBaseURI = "/services/Soap/c/%s"

const (
	actionDescribeSObject  = "describeSObject"
	actionDescribeSObjects = "describeSObjects"
)

// Client is a thin wrapper over the Salesforce SOAP API
type Client struct {
	session salesforce.Session
	logger  *zap.Logger
}

// New creates a SOAP client on a connected session
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

// apiURL is the SOAP endpoint. Unlike REST, it is built from the server URL
// directly instead of going through Session.ConstructURL.
func (c *Client) apiURL() string {
	return c.session.ServerURL() + fmt.Sprintf(soapBaseURI, c.session.APIVersion())
}

// DescribeSObjectType describes one object through describeSObject.
func (c *Client) DescribeSObjectType(ctx context.Context, name string) (string, error) {
	return c.call(ctx, actionDescribeSObject, body{
		DescribeSObject: &describeSObject{SObjectType: name},
	})
}

// DescribeSObjectsType describes several objects through describeSObjects.
func (c *Client) DescribeSObjectsType(ctx context.Context, names []string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("soap %s: no sObject names given", actionDescribeSObjects)
	}
	return c.call(ctx, actionDescribeSObjects, body{
		DescribeSObjects: &describeSObjects{SObjectTypes: names},
	})
}

func (c *Client) call(ctx context.Context, action string, b body) (string, error) {
	op := "soap " + action

	major, minor, err := salesforce.SplitAPIVersion(c.session.APIVersion())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	payload, err := newEnvelope(c.session.SessionID(), major, minor, b).marshal()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	endpoint := c.apiURL()
	headers := map[string]string{
		"Content-Type": "text/xml",
		"SOAPAction":   action,
	}

	c.logger.Debug("Making SOAP request",
		zap.String("endpoint", endpoint),
		zap.String("action", action))
	resp, err := c.session.Post(ctx, endpoint, headers, payload)
	if err != nil {
		c.logger.Error("SOAP request failed", zap.Error(err), zap.String("action", action))
		return "", fmt.Errorf("%s %s: %w", op, endpoint, err)
	}
	if resp == nil {
		return "", salesforce.NewProtocolError(op, 0, nil, errors.New("session returned no response"))
	}

	if resp.StatusCode != http.StatusOK {
		var cause error = errors.New("status code is not 200")
		if fault := parseFault(resp.Body); fault != nil {
			cause = fault
		}
		c.logger.Error("SOAP request returned an error",
			zap.String("action", action),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(cause))
		return "", salesforce.NewProtocolError(op, resp.StatusCode, resp.Body, cause)
	}

	return resp.Text(), nil
}
