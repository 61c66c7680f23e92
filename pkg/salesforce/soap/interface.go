package soap

import "context"

// SalesforceClient defines the SOAP describe operations exposed by Client
type SalesforceClient interface {
	DescribeSObjectType(ctx context.Context, name string) (string, error)
	DescribeSObjectsType(ctx context.Context, names []string) (string, error)
}

var _ SalesforceClient = &Client{}
