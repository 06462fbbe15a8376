// Package services holds the write workflows for clients and people: the
// transactional client edit with contact reassignment, and person edits with
// client-link checks.
package services

import (
	"context"

	"github.com/diewo77/go-records/internal/logging"
	"github.com/diewo77/go-records/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Observer is told about writes after they finished. It must not fail the
// write; it only logs and counts.
type Observer interface {
	Written(ctx context.Context, entity, operation string, err error)
	Reassigned(ctx context.Context, clientID uint, changes []Change)
}

type nopObserver struct{}

func (nopObserver) Written(context.Context, string, string, error) {}
func (nopObserver) Reassigned(context.Context, uint, []Change)     {}

// Recorder logs committed reassignments and feeds the write and
// reassignment counters.
type Recorder struct {
	log     *logrus.Logger
	metrics *metrics.Metrics
}

// NewRecorder returns an observer backed by log and m. m may be nil.
func NewRecorder(log *logrus.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{log: log, metrics: m}
}

func (r *Recorder) Written(ctx context.Context, entity, operation string, err error) {
	if r.metrics != nil {
		r.metrics.ObserveWrite(entity, operation, err)
	}
}

func (r *Recorder) Reassigned(ctx context.Context, clientID uint, changes []Change) {
	entry := logging.FromContext(ctx, r.log).WithField("client_id", clientID)
	for _, c := range changes {
		entry.WithField("person_id", c.PersonID).Info(c.String())
		if r.metrics != nil {
			r.metrics.ObserveReassignment(c.Assigned())
		}
	}
}
