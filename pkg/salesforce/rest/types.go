package rest

import (
	"encoding/json"
	"fmt"

	"github.com/natserract/sfdclib/pkg/salesforce"
)

// QueryResult is the response of the /query resource.
// Records are kept raw; use DecodeRecords for a typed view.
type QueryResult struct {
	TotalSize      int               `json:"totalSize"`
	Done           bool              `json:"done"`
	NextRecordsURL string            `json:"nextRecordsUrl,omitempty"`
	Records        []json.RawMessage `json:"records"`
}

// Attributes can be embedded in record types decoded from a QueryResult
type Attributes struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// DecodeRecords decodes every record of qr into T.
func DecodeRecords[T any](qr *QueryResult) ([]T, error) {
	if qr == nil {
		return nil, nil
	}
	out := make([]T, 0, len(qr.Records))
	for i, raw := range qr.Records {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, salesforce.NewProtocolError("rest decode records", 0, raw,
				fmt.Errorf("record %d: %w", i, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

// RecordCount is the number of records stored for one object
type RecordCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// RecordCountResult is the response of /limits/recordCount
type RecordCountResult struct {
	SObjects []RecordCount `json:"sObjects"`
}

// Count returns the record count for name and whether it was reported.
func (r *RecordCountResult) Count(name string) (int64, bool) {
	for _, rc := range r.SObjects {
		if rc.Name == name {
			return rc.Count, true
		}
	}
	return 0, false
}
