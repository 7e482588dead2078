package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewRecord(t *testing.T) {
	ds := cleaning.Dataset{
		Columns: []string{"email"},
		Rows:    []cleaning.Row{{"email": "A@gmial.com"}, {"email": "a@gmail.com"}},
	}
	opt := cleaning.DefaultOptions()
	opt.RemoveDuplicates = true
	rep, err := cleaning.Clean(ds, nil, opt)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := NewRecord("clients.csv", rep, start, start.Add(400*time.Millisecond))
	_, err = uuid.Parse(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Rows, "input rows, before duplicate removal")
	assert.Len(t, rep.Final, 1)
	assert.Equal(t, 1, rec.Cols)
	assert.Equal(t, 1, rec.DiffCount)
	assert.Equal(t, rep.ScoreAfter, rec.ScoreAfter)
	assert.Equal(t, 400*time.Millisecond, rec.Duration())
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	var h History
	for i := 0; i < MaxHistory+5; i++ {
		h.Add(Record{Filename: fmt.Sprintf("f%d", i)})
	}
	list := h.List()
	require.Len(t, list, MaxHistory)
	assert.Equal(t, fmt.Sprintf("f%d", MaxHistory+4), list[0].Filename)
	assert.Equal(t, "f5", list[MaxHistory-1].Filename)
	assert.Equal(t, MaxHistory, h.Len())
}

func TestScheduleDue(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, Schedule{Every: time.Hour}.Due(now), "disabled")
	assert.True(t, Schedule{Enabled: true, Every: time.Hour}.Due(now), "never ran")
	assert.False(t, Schedule{Enabled: true, Every: time.Hour, LastRun: now.Add(-30 * time.Minute)}.Due(now))
	assert.True(t, Schedule{Enabled: true, Every: time.Hour, LastRun: now.Add(-time.Hour)}.Due(now))
	assert.False(t, Schedule{Enabled: true}.Due(now), "zero interval never fires")
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSchedulerRunsWhenDue(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan Record, 10)
	hist := &History{}
	s := &Scheduler{
		Schedule: Schedule{Enabled: true, Every: time.Hour},
		Tick:     time.Millisecond,
		Now:      clock.Now,
		Run: func(ctx context.Context) (*Record, error) {
			r := Record{ID: uuid.NewString(), StartedAt: clock.Now()}
			return &r, nil
		},
		OnRecord: func(r Record) { runs <- r },
		History:  hist,
		Logger:   zaptest.NewLogger(t),
	}
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	first := <-runs
	select {
	case <-runs:
		t.Fatal("ran again before the interval elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Hour)
	second := <-runs
	assert.True(t, second.StartedAt.After(first.StartedAt))

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 2, hist.Len())
}

func TestSchedulerKeepsGoingAfterFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	s := &Scheduler{
		Schedule: Schedule{Enabled: true, Every: time.Minute},
		Tick:     time.Millisecond,
		Now:      clock.Now,
		Run: func(ctx context.Context) (*Record, error) {
			calls <- struct{}{}
			return nil, errors.New("boom")
		},
	}
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	<-calls
	clock.Advance(time.Minute)
	<-calls
	cancel()
	require.NoError(t, <-done)
}

func TestSchedulerRequiresRun(t *testing.T) {
	s := &Scheduler{Tick: time.Second}
	assert.Error(t, s.Start(context.Background()))
}
