// Package jobs runs periodic background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 30 * time.Second

// PendingCounter reports the moderation queue depth.
type PendingCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

// QueueGauge records the moderation queue depth.
type QueueGauge interface {
	SetPendingQueue(n int64)
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// NewScheduler creates a scheduler. Jobs never overlap and panics are recovered.
func NewScheduler(log logrus.FieldLogger) *Scheduler {
	log = log.WithField("component", "jobs")
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log: log,
	}
}

// AddPendingGauge refreshes the pending queue gauge on schedule.
func (s *Scheduler) AddPendingGauge(schedule string, counter PendingCounter, gauge QueueGauge) error {
	job := RefreshPendingGauge(counter, gauge, s.log)
	if _, err := s.cron.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("schedule pending gauge %q: %w", schedule, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("jobs still running at shutdown")
	}
}

// RefreshPendingGauge returns a job that copies the queue depth into gauge.
func RefreshPendingGauge(counter PendingCounter, gauge QueueGauge, log logrus.FieldLogger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := counter.CountPending(ctx)
		if err != nil {
			log.WithError(err).Warn("count pending recipes failed")
			return
		}
		gauge.SetPendingQueue(n)
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(kv []interface{}) logrus.Fields {
	out := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
