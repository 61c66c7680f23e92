package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/natserract/sfdclib/pkg/salesforce"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrg(t *testing.T, recordCountStatus int, revoked *int32) *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/oauth2/token":
			_, _ = w.Write([]byte(`{"access_token":"tok","instance_url":"` + srv.URL + `","token_type":"Bearer"}`))
		case "/services/oauth2/revoke":
			atomic.AddInt32(revoked, 1)
			w.WriteHeader(http.StatusOK)
		case "/services/data/v40.0/limits/recordCount":
			w.WriteHeader(recordCountStatus)
			if recordCountStatus == http.StatusOK {
				_, _ = w.Write([]byte(`{"sObjects":[{"count":2,"name":"Account"}]}`))
				return
			}
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		case "/services/Soap/c/40.0":
			_, _ = w.Write([]byte("<ok/>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("SF_LOGIN_URL", srv.URL)
	t.Setenv("SF_CLIENT_ID", "client")
	t.Setenv("SF_CLIENT_SECRET", "secret")
	t.Setenv("SF_USERNAME", "")
	t.Setenv("SF_PRIVATE_KEY_FILE", "")
	t.Setenv("SF_GRANT_TYPE", "client_credentials")
	t.Setenv("SF_API_VERSION", "40.0")
	t.Setenv("DB_HOST", "")
	return srv
}

func TestRun(t *testing.T) {
	t.Run("logs out after a successful run", func(t *testing.T) {
		var revoked int32
		newOrg(t, http.StatusOK, &revoked)

		require.NoError(t, run(context.Background(), []string{"Account"}, zap.NewNop()))
		require.EqualValues(t, 1, atomic.LoadInt32(&revoked))
	})

	t.Run("logs out when the run fails", func(t *testing.T) {
		var revoked int32
		newOrg(t, http.StatusServiceUnavailable, &revoked)

		err := run(context.Background(), []string{"Account"}, zap.NewNop())
		require.ErrorIs(t, err, salesforce.ErrProtocol)
		require.EqualValues(t, 1, atomic.LoadInt32(&revoked))
	})

	t.Run("config error", func(t *testing.T) {
		var revoked int32
		newOrg(t, http.StatusOK, &revoked)
		t.Setenv("SF_CLIENT_ID", "")

		require.Error(t, run(context.Background(), nil, zap.NewNop()))
		require.Zero(t, atomic.LoadInt32(&revoked))
	})
}
