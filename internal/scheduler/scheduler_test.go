package scheduler

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
	"docsync-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingProcessing emits ids and can hold a run open until release is closed.
type blockingProcessing struct {
	mu       sync.Mutex
	started  chan struct{}
	release  chan struct{}
	ids      []string
	err      error
	writes   int
	runs     int
	lastMode string
	after    time.Time
	query    string
}

func newBlockingProcessing(ids ...string) *blockingProcessing {
	return &blockingProcessing{
		started: make(chan struct{}, 10),
		ids:     ids,
	}
}

func (p *blockingProcessing) seq(mode string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		p.mu.Lock()
		p.runs++
		p.lastMode = mode
		release := p.release
		p.mu.Unlock()

		p.started <- struct{}{}
		if release != nil {
			<-release
		}
		for _, id := range p.ids {
			p.mu.Lock()
			p.writes++
			p.mu.Unlock()
			if !yield(id, nil) {
				return
			}
		}
		if p.err != nil {
			yield("", p.err)
		}
	}
}

func (p *blockingProcessing) ProcessDocumentsByStatus(ctx context.Context, status string) iter.Seq2[string, error] {
	return p.seq("status:" + status)
}

func (p *blockingProcessing) ProcessDocumentsCreatedAfter(ctx context.Context, after time.Time) iter.Seq2[string, error] {
	p.mu.Lock()
	p.after = after
	p.mu.Unlock()
	return p.seq("created_after")
}

func (p *blockingProcessing) ProcessDocumentsWithCustomQuery(ctx context.Context, queryJSON string) iter.Seq2[string, error] {
	p.mu.Lock()
	p.query = queryJSON
	p.mu.Unlock()
	return p.seq("raw")
}

func (p *blockingProcessing) CountDocumentsByStatus(ctx context.Context, status string) (int64, error) {
	return 0, nil
}

func (p *blockingProcessing) snapshot() (runs, writes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs, p.writes
}

type recordingHistory struct {
	mu       sync.Mutex
	triggers []string
	counts   []int
	errs     []error
}

func (h *recordingHistory) Start(ctx context.Context, trigger string, query dto.DocumentQuery) *entity.ProcessingRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.triggers = append(h.triggers, trigger)
	return &entity.ProcessingRun{Id: uuid.New(), Trigger: trigger, QueryMode: string(query.Mode())}
}

func (h *recordingHistory) Finish(ctx context.Context, run *entity.ProcessingRun, processed int, runErr error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts = append(h.counts, processed)
	h.errs = append(h.errs, runErr)
}

func (h *recordingHistory) Recent(ctx context.Context, limit int) ([]dto.ProcessingRunResponse, error) {
	return nil, nil
}

type stubLock struct {
	grant    bool
	err      error
	released int
	interval time.Duration
	lost     bool

	mu      sync.Mutex
	renewed int
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) { return l.grant, l.err }

func (l *stubLock) Renew(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.renewed++
	return !l.lost, nil
}

func (l *stubLock) renewals() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.renewed
}

func (l *stubLock) Release(ctx context.Context) error {
	l.released++
	return nil
}

func (l *stubLock) RenewInterval() time.Duration { return l.interval }

func TestSecondTriggerWhileRunningIsSkipped(t *testing.T) {
	processing := newBlockingProcessing("a", "b")
	processing.release = make(chan struct{})
	history := &recordingHistory{}
	log, logs := testutil.NewObservedLogger()
	sched := NewDocumentScheduler(processing, history, NewRunState(), log)

	require.True(t, sched.ProcessNewDocuments())
	<-processing.started
	assert.True(t, sched.IsRunning())

	assert.False(t, sched.ProcessNewDocuments())
	assert.False(t, sched.ProcessRecentDocuments(1))
	assert.False(t, sched.ProcessWithCustomQuery(`{}`))
	assert.Equal(t, 3, logs.FilterMessage("Previous processing run still in progress, skipping").Len())

	close(processing.release)
	sched.Wait()

	runs, writes := processing.snapshot()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, writes, "the first run is unaffected by the skipped triggers")
	assert.False(t, sched.IsRunning())
	assert.Equal(t, []int{2}, history.counts)
	assert.Equal(t, 1, logs.FilterMessage("Document processing run finished, 2 documents processed").Len())
}

func TestFlagIsReleasedAfterFailure(t *testing.T) {
	processing := newBlockingProcessing("a")
	processing.err = errors.New("storage down")
	history := &recordingHistory{}
	log, logs := testutil.NewObservedLogger()
	sched := NewDocumentScheduler(processing, history, NewRunState(), log)

	require.True(t, sched.ProcessNewDocuments())
	sched.Wait()

	assert.False(t, sched.IsRunning())
	require.Len(t, history.errs, 1)
	assert.EqualError(t, history.errs[0], "storage down")
	assert.Equal(t, []int{1}, history.counts)
	assert.Equal(t, 1, logs.FilterMessage("Document processing run failed").Len())

	processing.err = nil
	require.True(t, sched.ProcessNewDocuments(), "a failed run does not block the next one")
	sched.Wait()
}

func TestRecentDocumentsWindow(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		hoursBack int
		want      time.Time
	}{
		{name: "explicit", hoursBack: 6, want: now.Add(-6 * time.Hour)},
		{name: "zero defaults to a day", hoursBack: 0, want: now.Add(-24 * time.Hour)},
		{name: "negative defaults to a day", hoursBack: -3, want: now.Add(-24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processing := newBlockingProcessing()
			history := &recordingHistory{}
			sched := NewDocumentScheduler(processing, history, NewRunState(), testutil.NopLogger(), WithClock(func() time.Time { return now }))

			require.True(t, sched.ProcessRecentDocuments(tt.hoursBack))
			sched.Wait()

			assert.Equal(t, tt.want, processing.after)
			assert.Equal(t, []string{constant.TriggerRecent}, history.triggers)
		})
	}
}

func TestCustomQueryIsPassedThrough(t *testing.T) {
	processing := newBlockingProcessing("x")
	history := &recordingHistory{}
	sched := NewDocumentScheduler(processing, history, NewRunState(), testutil.NopLogger())

	require.True(t, sched.ProcessWithCustomQuery(`{"query":{"match_all":{}}}`))
	sched.Wait()

	assert.Equal(t, `{"query":{"match_all":{}}}`, processing.query)
	assert.Equal(t, []string{constant.TriggerCustomQuery}, history.triggers)
}

func TestSharedRunStateSpansSchedulers(t *testing.T) {
	state := NewRunState()
	processing := newBlockingProcessing()
	processing.release = make(chan struct{})
	first := NewDocumentScheduler(processing, &recordingHistory{}, state, testutil.NopLogger())
	second := NewDocumentScheduler(processing, &recordingHistory{}, state, testutil.NopLogger())

	require.True(t, first.ProcessNewDocuments())
	<-processing.started
	assert.False(t, second.ProcessNewDocuments())

	close(processing.release)
	first.Wait()
	assert.False(t, state.IsRunning())
}

func TestRunLockDenied(t *testing.T) {
	tests := []struct {
		name string
		lock *stubLock
		msg  string
	}{
		{name: "held elsewhere", lock: &stubLock{grant: false}, msg: "Run lease held by another worker, skipping"},
		{name: "redis error", lock: &stubLock{err: errors.New("redis down")}, msg: "Failed to acquire run lease, skipping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processing := newBlockingProcessing("a")
			log, logs := testutil.NewObservedLogger()
			sched := NewDocumentScheduler(processing, &recordingHistory{}, NewRunState(), log, WithRunLock(tt.lock))

			assert.False(t, sched.ProcessNewDocuments())
			sched.Wait()

			runs, _ := processing.snapshot()
			assert.Zero(t, runs)
			assert.False(t, sched.IsRunning())
			assert.Equal(t, 1, logs.FilterMessage(tt.msg).Len())
		})
	}
}

func TestRunLockReleasedAfterRun(t *testing.T) {
	lock := &stubLock{grant: true}
	sched := NewDocumentScheduler(newBlockingProcessing("a"), &recordingHistory{}, NewRunState(), testutil.NopLogger(), WithRunLock(lock))

	require.True(t, sched.ProcessNewDocuments())
	sched.Wait()
	assert.Equal(t, 1, lock.released)
}

func TestValidateCron(t *testing.T) {
	assert.NoError(t, ValidateCron("*/5 * * * *"))
	assert.NoError(t, ValidateCron("0 */5 * * * *"))
	assert.NoError(t, ValidateCron("@every 1m"))
	assert.Error(t, ValidateCron("every five minutes"))
}

func TestStartRejectsBadCron(t *testing.T) {
	sched := NewDocumentScheduler(newBlockingProcessing(), &recordingHistory{}, NewRunState(), testutil.NopLogger())
	assert.Error(t, sched.Start("not a cron"))
}

func TestCronTriggersRuns(t *testing.T) {
	processing := newBlockingProcessing("a")
	sched := NewDocumentScheduler(processing, &recordingHistory{}, NewRunState(), testutil.NopLogger())

	require.NoError(t, sched.Start("@every 1s"))
	select {
	case <-processing.started:
	case <-time.After(3 * time.Second):
		t.Fatal("cron did not trigger a run")
	}
	sched.Stop()

	assert.False(t, sched.IsRunning())
}

func TestStopRefusesLaterTriggers(t *testing.T) {
	processing := newBlockingProcessing("a")
	processing.release = make(chan struct{})
	history := &recordingHistory{}
	log, logs := testutil.NewObservedLogger()
	sched := NewDocumentScheduler(processing, history, NewRunState(), log)

	require.True(t, sched.ProcessNewDocuments())
	<-processing.started

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		return !sched.ProcessRecentDocuments(1) && logs.FilterMessage("Scheduler is stopping, skipping").Len() > 0
	}, time.Second, 5*time.Millisecond)

	select {
	case <-stopped:
		t.Fatal("Stop returned while a run was active")
	default:
	}
	close(processing.release)
	<-stopped

	assert.False(t, sched.ProcessNewDocuments())
	assert.False(t, sched.ProcessNewDocumentsOnRequest())
	assert.False(t, sched.ProcessWithCustomQuery(`{}`))
	assert.False(t, sched.IsRunning())

	runs, _ := processing.snapshot()
	assert.Equal(t, 1, runs)
	assert.Equal(t, []int{1}, history.counts)
}

func TestDefaultRecentHoursOption(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		option int
		want   time.Time
	}{
		{name: "configured window", option: 72, want: now.Add(-72 * time.Hour)},
		{name: "non-positive keeps a day", option: 0, want: now.Add(-24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processing := newBlockingProcessing()
			sched := NewDocumentScheduler(processing, &recordingHistory{}, NewRunState(), testutil.NopLogger(),
				WithClock(func() time.Time { return now }), WithDefaultRecentHours(tt.option))

			require.True(t, sched.ProcessRecentDocuments(0))
			sched.Wait()

			assert.Equal(t, tt.want, processing.after)
		})
	}
}

func TestManualNewRunIsRecordedAsManual(t *testing.T) {
	processing := newBlockingProcessing("a")
	history := &recordingHistory{}
	sched := NewDocumentScheduler(processing, history, NewRunState(), testutil.NopLogger())

	require.True(t, sched.ProcessNewDocumentsOnRequest())
	sched.Wait()
	require.True(t, sched.ProcessNewDocuments())
	sched.Wait()

	assert.Equal(t, []string{constant.TriggerManual, constant.TriggerSchedule}, history.triggers)
	assert.Equal(t, "status:NEW", processing.lastMode)
}

func TestRunLeaseIsRenewedWhileRunning(t *testing.T) {
	processing := newBlockingProcessing("a")
	processing.release = make(chan struct{})
	lock := &stubLock{grant: true, interval: 5 * time.Millisecond}
	sched := NewDocumentScheduler(processing, &recordingHistory{}, NewRunState(), testutil.NopLogger(), WithRunLock(lock))

	require.True(t, sched.ProcessNewDocuments())
	<-processing.started
	require.Eventually(t, func() bool { return lock.renewals() >= 2 }, time.Second, time.Millisecond)

	close(processing.release)
	sched.Wait()

	settled := lock.renewals()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, lock.renewals(), "renewal stops with the run")
	assert.Equal(t, 1, lock.released)
}

func TestLostRunLeaseIsLogged(t *testing.T) {
	processing := newBlockingProcessing("a")
	processing.release = make(chan struct{})
	lock := &stubLock{grant: true, interval: 5 * time.Millisecond, lost: true}
	log, logs := testutil.NewObservedLogger()
	sched := NewDocumentScheduler(processing, &recordingHistory{}, NewRunState(), log, WithRunLock(lock))

	require.True(t, sched.ProcessNewDocuments())
	<-processing.started
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Run lease lost while run in progress").Len() == 1
	}, time.Second, time.Millisecond)

	close(processing.release)
	sched.Wait()
	assert.Equal(t, 1, lock.renewals(), "renewal gives up once the lease is gone")
}
