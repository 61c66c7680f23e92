// Package snapshot records object record counts and describe results of an
// org, optionally persisting each run to a Store.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/natserract/sfdclib/pkg/salesforce/rest"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const defaultMaxGoroutines = 5

// RecordCounter is the REST operation a run needs
type RecordCounter interface {
	GetObjectCount(ctx context.Context, objects ...string) (*rest.RecordCountResult, error)
}

// Describer is the SOAP operation a run needs
type Describer interface {
	DescribeSObjectType(ctx context.Context, name string) (string, error)
}

// Store persists snapshots
type Store interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
}

// Service takes snapshots
type Service struct {
	counter       RecordCounter
	describer     Describer
	store         Store
	apiVersion    string
	maxGoroutines int
	logger        *zap.Logger
}

// NewService creates a snapshot service. store may be nil, in which case
// snapshots are only returned.
func NewService(counter RecordCounter, describer Describer, store Store, apiVersion string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		counter:       counter,
		describer:     describer,
		store:         store,
		apiVersion:    apiVersion,
		maxGoroutines: defaultMaxGoroutines,
		logger:        logger,
	}
}

// WithMaxGoroutines bounds the number of concurrent describe calls
func (s *Service) WithMaxGoroutines(n int) *Service {
	if n > 0 {
		s.maxGoroutines = n
	}
	return s
}

// Run takes a snapshot of objects, or of every object reporting a record
// count when objects is empty. A failing describe is logged and counted in
// the metrics; it does not fail the run.
func (s *Service) Run(ctx context.Context, objects []string) (*Snapshot, *Metrics, error) {
	startTime := time.Now()
	snap := &Snapshot{
		RunID:      uuid.New(),
		TakenAt:    startTime.UTC(),
		APIVersion: s.apiVersion,
	}
	metrics := &Metrics{}

	s.logger.Info("Starting snapshot",
		zap.String("run_id", snap.RunID.String()),
		zap.Strings("objects", objects))

	counts, err := s.counter.GetObjectCount(ctx, objects...)
	if err != nil {
		return nil, metrics, fmt.Errorf("failed to get record counts: %w", err)
	}
	snap.Counts = counts.SObjects

	names := objects
	if len(names) == 0 {
		names = make([]string, 0, len(counts.SObjects))
		for _, rc := range counts.SObjects {
			names = append(names, rc.Name)
		}
	}

	results := make([]*Describe, len(names))
	p := pool.New().WithMaxGoroutines(s.maxGoroutines).WithErrors().WithContext(ctx)
	for idx, name := range names {
		i, name := idx, name
		p.Go(func(ctx context.Context) error {
			raw, err := s.describer.DescribeSObjectType(ctx, name)
			if err != nil {
				metrics.AddDescribeFailure()
				s.logger.Error("Failed to describe object",
					zap.String("object", name),
					zap.Error(err))
				return fmt.Errorf("describe %s: %w", name, err)
			}
			metrics.AddDescribeSuccess()
			results[i] = &Describe{Object: name, XML: raw}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		s.logger.Warn("Some describes failed", zap.Error(err))
	}

	for _, d := range results {
		if d != nil {
			snap.Describes = append(snap.Describes, *d)
		}
	}

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			return snap, metrics, fmt.Errorf("failed to save snapshot %s: %w", snap.RunID, err)
		}
	}

	s.logger.Info("Completed snapshot",
		zap.String("run_id", snap.RunID.String()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("record_counts", len(snap.Counts)),
		zap.Int("describes_succeeded", metrics.DescribesSucceeded),
		zap.Int("describes_failed", metrics.DescribesFailed))

	return snap, metrics, nil
}
