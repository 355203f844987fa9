// Package scheduler triggers document processing runs, one at a time.
package scheduler

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/service"
	"docsync-be/pkg/flow"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCron accepts five-field expressions and six-field ones with leading seconds.
func ValidateCron(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

type DocumentScheduler struct {
	processing service.IDocumentProcessingService
	history    service.IRunHistoryService
	state      *RunState
	lock       RunLock
	logger     logger.ILogger
	now        func() time.Time

	defaultRecentHours int

	cron *cron.Cron
	wg   sync.WaitGroup
	// mu orders wg.Add in launch against Stop flipping stopping.
	mu       sync.Mutex
	stopping bool
}

type Option func(*DocumentScheduler)

// WithRunLock adds a cross-process lease taken after the local flag.
func WithRunLock(lock RunLock) Option {
	return func(s *DocumentScheduler) { s.lock = lock }
}

// WithDefaultRecentHours sets the look-back window used when a caller passes hoursBack <= 0.
func WithDefaultRecentHours(hours int) Option {
	return func(s *DocumentScheduler) {
		if hours > 0 {
			s.defaultRecentHours = hours
		}
	}
}

// WithClock replaces time.Now for the recent-documents window.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentScheduler) { s.now = now }
}

func NewDocumentScheduler(
	processing service.IDocumentProcessingService,
	history service.IRunHistoryService,
	state *RunState,
	logger logger.ILogger,
	opts ...Option,
) *DocumentScheduler {
	s := &DocumentScheduler{
		processing: processing,
		history:    history,
		state:      state,
		lock:       NewNoopRunLock(),
		logger:     logger,
		now:        time.Now,

		defaultRecentHours: constant.DefaultRecentHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessNewDocuments runs on the cron timer and picks up documents with status NEW.
func (s *DocumentScheduler) ProcessNewDocuments() bool {
	return s.processNew(constant.TriggerSchedule)
}

// ProcessNewDocumentsOnRequest is ProcessNewDocuments for manual sync requests.
func (s *DocumentScheduler) ProcessNewDocumentsOnRequest() bool {
	return s.processNew(constant.TriggerManual)
}

func (s *DocumentScheduler) processNew(trigger string) bool {
	return s.launch(trigger, dto.StatusQuery{Status: constant.DocumentStatusNew},
		func(ctx context.Context) iter.Seq2[string, error] {
			return s.processing.ProcessDocumentsByStatus(ctx, constant.DocumentStatusNew)
		})
}

// ProcessRecentDocuments processes documents created in the last hoursBack hours.
// hoursBack <= 0 falls back to the configured default, 24 unless overridden.
func (s *DocumentScheduler) ProcessRecentDocuments(hoursBack int) bool {
	if hoursBack <= 0 {
		hoursBack = s.defaultRecentHours
	}
	after := s.now().Add(-time.Duration(hoursBack) * time.Hour)

	return s.launch(constant.TriggerRecent, dto.CreatedAfterQuery{After: after},
		func(ctx context.Context) iter.Seq2[string, error] {
			return s.processing.ProcessDocumentsCreatedAfter(ctx, after)
		})
}

func (s *DocumentScheduler) ProcessWithCustomQuery(queryJSON string) bool {
	return s.launch(constant.TriggerCustomQuery, dto.RawQuery{JSON: queryJSON},
		func(ctx context.Context) iter.Seq2[string, error] {
			return s.processing.ProcessDocumentsWithCustomQuery(ctx, queryJSON)
		})
}

func (s *DocumentScheduler) IsRunning() bool {
	return s.state.IsRunning()
}

// Wait blocks until every launched run has finished.
func (s *DocumentScheduler) Wait() {
	s.wg.Wait()
}

func (s *DocumentScheduler) launch(trigger string, query dto.DocumentQuery, run func(ctx context.Context) iter.Seq2[string, error]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		s.logger.Info(constant.ModuleScheduler, "Scheduler is stopping, skipping", map[string]interface{}{
			"trigger": trigger,
		})
		return false
	}

	if !s.state.TryAcquire() {
		s.logger.Info(constant.ModuleScheduler, "Previous processing run still in progress, skipping", map[string]interface{}{
			"trigger": trigger,
		})
		return false
	}

	// Runs are never cancelled once started.
	ctx := context.WithoutCancel(context.Background())

	acquired, err := s.lock.Acquire(ctx)
	if err != nil || !acquired {
		s.state.Release()
		details := map[string]interface{}{"trigger": trigger}
		if err != nil {
			details["error"] = err
			s.logger.Error(constant.ModuleScheduler, "Failed to acquire run lease, skipping", details)
		} else {
			s.logger.Info(constant.ModuleScheduler, "Run lease held by another worker, skipping", details)
		}
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.state.Release()
		defer func() {
			if err := s.lock.Release(ctx); err != nil {
				s.logger.Warn(constant.ModuleScheduler, "Failed to release run lease", map[string]interface{}{"error": err.Error()})
			}
		}()

		stopRenewal := s.keepLease(ctx, trigger)
		defer stopRenewal()

		s.execute(ctx, trigger, query, run)
	}()
	return true
}

// keepLease renews the run lease until the returned func is called.
func (s *DocumentScheduler) keepLease(ctx context.Context, trigger string) func() {
	interval := s.lock.RenewInterval()
	if interval <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				held, err := s.lock.Renew(ctx)
				if err != nil {
					s.logger.Warn(constant.ModuleScheduler, "Failed to renew run lease", map[string]interface{}{
						"trigger": trigger,
						"error":   err.Error(),
					})
					continue
				}
				if !held {
					s.logger.Error(constant.ModuleScheduler, "Run lease lost while run in progress", map[string]interface{}{
						"trigger": trigger,
					})
					return
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}

func (s *DocumentScheduler) execute(ctx context.Context, trigger string, query dto.DocumentQuery, run func(ctx context.Context) iter.Seq2[string, error]) {
	record := s.history.Start(ctx, trigger, query)
	started := time.Now()

	count, err := flow.Count(run(ctx))
	s.history.Finish(ctx, record, count, err)

	details := map[string]interface{}{
		"trigger":     trigger,
		"run_id":      record.Id.String(),
		"processed":   count,
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		details["error"] = err
		s.logger.Error(constant.ModuleScheduler, "Document processing run failed", details)
		return
	}
	s.logger.Info(constant.ModuleScheduler, fmt.Sprintf("Document processing run finished, %d documents processed", count), details)
}

// Start schedules ProcessNewDocuments on spec.
func (s *DocumentScheduler) Start(spec string) error {
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(cronLogger{logger: s.logger}),
	)
	if _, err := c.AddFunc(spec, func() { s.ProcessNewDocuments() }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	s.cron = c
	c.Start()

	s.logger.Info(constant.ModuleScheduler, "Scheduler started", map[string]interface{}{"cron": spec})
	return nil
}

// Stop halts the timer, refuses further triggers and waits for the active run, if any.
func (s *DocumentScheduler) Stop() {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.Wait()
	s.logger.Info(constant.ModuleScheduler, "Scheduler stopped", nil)
}

// cronLogger routes cron's own logging through ILogger.
type cronLogger struct {
	logger logger.ILogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(constant.ModuleScheduler, "cron: "+msg, pairs(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	details := pairs(keysAndValues)
	details["error"] = err
	l.logger.Error(constant.ModuleScheduler, "cron: "+msg, details)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	details := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		details[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return details
}
