// Package salesforce holds the pieces shared by the Salesforce REST and SOAP
// wrappers: the Session contract they consume, the error kinds they return and
// API version helpers.
//
// The wrappers never authenticate on their own. A Session is created and
// logged in by the caller (see pkg/session for an OAuth implementation) and
// handed to rest.New or soap.New. Every wrapper call reads the session's live
// API version and token, so a session that re-authenticates between calls is
// picked up without rebuilding the clients.
package salesforce

import (
	"context"

	httpclient "github.com/natserract/sfdclib/pkg/http"
)

// Session is the connection state the REST and SOAP clients run against.
type Session interface {
	// IsConnected reports whether the session holds a usable token
	IsConnected() bool

	// APIVersion returns the numeric API version, e.g. "40.0"
	APIVersion() string

	// SessionID returns the current session (access) token
	SessionID() string

	// ServerURL returns the instance base URL, e.g. "https://acme.my.salesforce.com"
	ServerURL() string

	// ConstructURL resolves an absolute URL for path against the instance
	ConstructURL(path string) string

	Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpclient.Response, error)
	Delete(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
}
