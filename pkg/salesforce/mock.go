package salesforce

import (
	"context"
	"sync/atomic"

	httpclient "github.com/natserract/sfdclib/pkg/http"
)

// SessionMock is a Session whose behaviour is set per test through its fields.
// A test sets the stubs for the calls it expects; an unset stub panics.
type SessionMock struct {
	Connected bool
	Version   string
	ID        string
	Server    string

	GetStub    func(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
	PostStub   func(ctx context.Context, url string, headers map[string]string, body []byte) (*httpclient.Response, error)
	DeleteStub func(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)

	GetCalled    int32
	PostCalled   int32
	DeleteCalled int32
}

var _ Session = &SessionMock{}

func (m *SessionMock) IsConnected() bool  { return m.Connected }
func (m *SessionMock) APIVersion() string { return m.Version }
func (m *SessionMock) SessionID() string  { return m.ID }
func (m *SessionMock) ServerURL() string  { return m.Server }

func (m *SessionMock) ConstructURL(path string) string {
	return m.Server + path
}

func (m *SessionMock) Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error) {
	atomic.AddInt32(&m.GetCalled, 1)
	return m.GetStub(ctx, url, headers)
}

func (m *SessionMock) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpclient.Response, error) {
	atomic.AddInt32(&m.PostCalled, 1)
	return m.PostStub(ctx, url, headers, body)
}

func (m *SessionMock) Delete(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error) {
	atomic.AddInt32(&m.DeleteCalled, 1)
	return m.DeleteStub(ctx, url, headers)
}
