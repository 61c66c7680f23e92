package rest

import "context"

// SalesforceClient defines the REST operations exposed by Client
type SalesforceClient interface {
	// Get issues a GET and decodes the JSON response into result
	Get(ctx context.Context, uri string, result interface{}) error

	// Post sends data as JSON and decodes the JSON response into result
	Post(ctx context.Context, uri string, data interface{}, result interface{}) error

	// Delete removes the resource at uri
	Delete(ctx context.Context, uri string) error

	// SOQLQuery runs a SOQL query
	SOQLQuery(ctx context.Context, query string) (*QueryResult, error)

	// QueryMore follows the nextRecordsUrl of an unfinished query
	QueryMore(ctx context.Context, nextRecordsURL string) (*QueryResult, error)

	// GetObjectCount lists record counts for the given objects, or all of them
	GetObjectCount(ctx context.Context, objects ...string) (*RecordCountResult, error)
}

var _ SalesforceClient = &Client{}
