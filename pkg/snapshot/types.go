package snapshot

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natserract/sfdclib/pkg/salesforce/rest"
)

// Snapshot is one run: record counts for a set of objects and the raw
// describeSObject response of each of them.
type Snapshot struct {
	RunID      uuid.UUID
	TakenAt    time.Time
	APIVersion string
	Counts     []rest.RecordCount
	Describes  []Describe
}

// Describe is the raw describe XML of one object
type Describe struct {
	Object string
	XML    string
}

// Metrics tracks the outcome of the describe fan-out of a run
type Metrics struct {
	DescribesSucceeded int
	DescribesFailed    int
	mu                 sync.Mutex
}

// AddDescribeSuccess increments the describes succeeded count
func (m *Metrics) AddDescribeSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribesSucceeded++
}

// AddDescribeFailure increments the describes failed count
func (m *Metrics) AddDescribeFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribesFailed++
}
