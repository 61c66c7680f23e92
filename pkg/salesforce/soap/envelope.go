package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	enterpriseNS   = "urn:enterprise.soap.sforce.com"
)

// Element names carry their prefixes literally; the prefixes are bound by
// the xmlns attributes on the envelope. Text content is escaped by the encoder.
type envelope struct {
	XMLName      xml.Name `xml:"soapenv:Envelope"`
	SoapEnvNS    string   `xml:"xmlns:soapenv,attr"`
	EnterpriseNS string   `xml:"xmlns:ep,attr"`
	Header       header   `xml:"soapenv:Header"`
	Body         body     `xml:"soapenv:Body"`
}

type header struct {
	SessionHeader        sessionHeader        `xml:"ep:SessionHeader"`
	PackageVersionHeader packageVersionHeader `xml:"ep:PackageVersionHeader"`
}

type sessionHeader struct {
	SessionID string `xml:"ep:sessionId"`
}

type packageVersionHeader struct {
	PackageVersions packageVersion `xml:"ep:packageVersions"`
}

type packageVersion struct {
	MajorNumber string `xml:"ep:majorNumber"`
	MinorNumber string `xml:"ep:minorNumber"`
}

type body struct {
	DescribeSObject  *describeSObject  `xml:"ep:describeSObject"`
	DescribeSObjects *describeSObjects `xml:"ep:describeSObjects"`
}

type describeSObject struct {
	SObjectType string `xml:"ep:sObjectType"`
}

type describeSObjects struct {
	SObjectTypes []string `xml:"ep:sObjectType"`
}

func newEnvelope(sessionID, major, minor string, b body) *envelope {
	return &envelope{
		SoapEnvNS:    soapEnvelopeNS,
		EnterpriseNS: enterpriseNS,
		Header: header{
			SessionHeader: sessionHeader{SessionID: sessionID},
			PackageVersionHeader: packageVersionHeader{
				PackageVersions: packageVersion{MajorNumber: major, MinorNumber: minor},
			},
		},
		Body: b,
	}
}

func (e *envelope) marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("failed to encode soap envelope: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to encode soap envelope: %w", err)
	}
	return buf.Bytes(), nil
}
