package soap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/beevik/etree"
	httpclient "github.com/natserract/sfdclib/pkg/http"
	"github.com/natserract/sfdclib/pkg/salesforce"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testServer = "https://acme.my.salesforce.com"

	describeResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns="urn:enterprise.soap.sforce.com">
<soapenv:Body><describeSObjectResponse><result><name>Account</name></result></describeSObjectResponse></soapenv:Body>
</soapenv:Envelope>`

	faultResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
<soapenv:Body><soapenv:Fault><faultcode>sf:INVALID_SESSION_ID</faultcode><faultstring>Invalid Session ID found in SessionHeader</faultstring></soapenv:Fault></soapenv:Body>
</soapenv:Envelope>`
)

type capturedPost struct {
	url     string
	headers map[string]string
	body    string
}

func testSession(version string, status int, respBody string, captured *capturedPost) *salesforce.SessionMock {
	return &salesforce.SessionMock{
		Connected: true,
		Version:   version,
		ID:        "00Dxx!token",
		Server:    testServer,
		PostStub: func(_ context.Context, url string, headers map[string]string, body []byte) (*httpclient.Response, error) {
			if captured != nil {
				*captured = capturedPost{url: url, headers: headers, body: string(body)}
			}
			return &httpclient.Response{StatusCode: status, Body: []byte(respBody)}, nil
		},
	}
}

func newTestClient(t *testing.T, s salesforce.Session) *Client {
	c, err := New(s, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	s := testSession("40.0", http.StatusOK, "", nil)
	_, err := New(s, nil)
	require.NoError(t, err)

	s.Connected = false
	_, err = New(s, nil)
	require.ErrorIs(t, err, salesforce.ErrInvalidState)
}

func TestClient_DescribeSObjectType(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got capturedPost
		s := testSession("40.0", http.StatusOK, describeResponse, &got)

		res, err := newTestClient(t, s).DescribeSObjectType(context.Background(), "Account")
		require.NoError(t, err)
		require.Equal(t, describeResponse, res)

		require.Equal(t, testServer+"/services/Soap/c/40.0", got.url)
		require.Equal(t, map[string]string{
			"Content-Type": "text/xml",
			"SOAPAction":   "describeSObject",
		}, got.headers)
		require.Contains(t, got.body, `<ep:sessionId>00Dxx!token</ep:sessionId>`)
		require.Contains(t, got.body, `<ep:majorNumber>40</ep:majorNumber>`)
		require.Contains(t, got.body, `<ep:minorNumber>0</ep:minorNumber>`)
		require.Contains(t, got.body, `<ep:describeSObject><ep:sObjectType>Account</ep:sObjectType></ep:describeSObject>`)
		require.NotContains(t, got.body, "describeSObjects")
	})

	t.Run("envelope structure", func(t *testing.T) {
		var got capturedPost
		s := testSession("40.0", http.StatusOK, describeResponse, &got)
		_, err := newTestClient(t, s).DescribeSObjectType(context.Background(), "Account")
		require.NoError(t, err)

		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromString(got.body))

		root := doc.Root()
		require.Equal(t, "soapenv", root.Space)
		require.Equal(t, "Envelope", root.Tag)
		require.Equal(t, soapEnvelopeNS, root.SelectAttrValue("xmlns:soapenv", ""))
		require.Equal(t, enterpriseNS, root.SelectAttrValue("xmlns:ep", ""))
		require.NotNil(t, doc.FindElement("/Envelope/Header/SessionHeader/sessionId"))
		require.NotNil(t, doc.FindElement("/Envelope/Body/describeSObject/sObjectType"))
	})

	t.Run("names are escaped", func(t *testing.T) {
		var got capturedPost
		s := testSession("40.0", http.StatusOK, describeResponse, &got)

		_, err := newTestClient(t, s).DescribeSObjectType(context.Background(), `Bad</ep:sObjectType><x>&`)
		require.NoError(t, err)
		require.Contains(t, got.body, `<ep:sObjectType>Bad&lt;/ep:sObjectType&gt;&lt;x&gt;&amp;</ep:sObjectType>`)

		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromString(got.body))
		require.Equal(t, `Bad</ep:sObjectType><x>&`, doc.FindElement("//sObjectType").Text())
	})

	t.Run("server error", func(t *testing.T) {
		s := testSession("40.0", http.StatusInternalServerError, faultResponse, nil)

		_, err := newTestClient(t, s).DescribeSObjectType(context.Background(), "Account")
		require.ErrorIs(t, err, salesforce.ErrProtocol)

		var perr *salesforce.ProtocolError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, http.StatusInternalServerError, perr.StatusCode)

		var fault *Fault
		require.ErrorAs(t, err, &fault)
		require.Equal(t, "sf:INVALID_SESSION_ID", fault.Code)
		require.Equal(t, "Invalid Session ID found in SessionHeader", fault.String)
	})

	t.Run("error without fault", func(t *testing.T) {
		s := testSession("40.0", http.StatusServiceUnavailable, "maintenance", nil)

		_, err := newTestClient(t, s).DescribeSObjectType(context.Background(), "Account")
		require.ErrorIs(t, err, salesforce.ErrProtocol)

		var fault *Fault
		require.False(t, errors.As(err, &fault))
		require.False(t, strings.Contains(err.Error(), "soap fault"))
	})

	t.Run("malformed api version", func(t *testing.T) {
		s := testSession("40", http.StatusOK, describeResponse, nil)

		_, err := newTestClient(t, s).DescribeSObjectType(context.Background(), "Account")
		require.ErrorIs(t, err, salesforce.ErrUnsupportedVersion)
		require.EqualValues(t, 0, s.PostCalled)
	})
}

func TestClient_DescribeSObjectsType(t *testing.T) {
	var got capturedPost
	s := testSession("58.1", http.StatusOK, describeResponse, &got)
	c := newTestClient(t, s)

	res, err := c.DescribeSObjectsType(context.Background(), []string{"Account", "Contact"})
	require.NoError(t, err)
	require.Equal(t, describeResponse, res)

	require.Equal(t, testServer+"/services/Soap/c/58.1", got.url)
	require.Equal(t, "describeSObjects", got.headers["SOAPAction"])
	require.Contains(t, got.body, `<ep:majorNumber>58</ep:majorNumber>`)
	require.Contains(t, got.body, `<ep:minorNumber>1</ep:minorNumber>`)
	require.Contains(t, got.body,
		`<ep:describeSObjects><ep:sObjectType>Account</ep:sObjectType><ep:sObjectType>Contact</ep:sObjectType></ep:describeSObjects>`)

	_, err = c.DescribeSObjectsType(context.Background(), nil)
	require.Error(t, err)
	require.EqualValues(t, 1, s.PostCalled)
}

func TestParseFault(t *testing.T) {
	require.Nil(t, parseFault([]byte("not xml <")))
	require.Nil(t, parseFault([]byte(describeResponse)))
	require.Equal(t, &Fault{Code: "sf:INVALID_SESSION_ID", String: "Invalid Session ID found in SessionHeader"},
		parseFault([]byte(faultResponse)))
}

func TestClient_NoResponse(t *testing.T) {
	s := testSession("40.0", http.StatusOK, "", nil)
	s.PostStub = func(context.Context, string, map[string]string, []byte) (*httpclient.Response, error) {
		return nil, nil
	}

	_, err := newTestClient(t, s).DescribeSObjectType(context.Background(), "Account")
	require.ErrorIs(t, err, salesforce.ErrProtocol)

	var perr *salesforce.ProtocolError
	require.True(t, errors.As(err, &perr))
	require.Zero(t, perr.StatusCode)
}
