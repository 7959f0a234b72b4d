package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // 처음 N번 실패
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop()).WithRetry(2, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 18 * * *"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}), "bad schedule")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("b"))
	assert.Equal(t, []string{"a"}, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("b"))
}

func TestRunJobSync(t *testing.T) {
	tests := []struct {
		name     string
		failures int32
		success  bool
		calls    int32
	}{
		{"first try", 0, true, 1},
		{"succeeds on retry", 2, true, 3},
		{"exhausts retries", 5, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler()
			job := &countingJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJobSync(context.Background(), "job")
			require.NoError(t, err)

			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.calls, job.calls.Load())
			if !tt.success {
				assert.Equal(t, "transient", result.Error)
			}
		})
	}
}

func TestRunJobSyncUnknown(t *testing.T) {
	_, err := newTestScheduler().RunJobSync(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRetryStopsOnCancel(t *testing.T) {
	s := New(logger.Nop()).WithRetry(5, time.Hour)
	job := &countingJob{name: "job", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJobSync(ctx, "job")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), job.calls.Load())
	assert.Contains(t, result.Error, "cancelled")
}

func TestJobHistoryAndStats(t *testing.T) {
	s := newTestScheduler()
	ok := &countingJob{name: "ok", schedule: "@daily"}
	bad := &countingJob{name: "bad", schedule: "@hourly", failures: 100}
	require.NoError(t, s.AddJob(ok))
	require.NoError(t, s.AddJob(bad))

	for i := 0; i < 2; i++ {
		_, err := s.RunJobSync(context.Background(), "ok")
		require.NoError(t, err)
	}
	_, err := s.RunJobSync(context.Background(), "bad")
	require.NoError(t, err)

	history, err := s.GetJobHistory("ok")
	require.NoError(t, err)
	assert.Len(t, history.Results, 2)
	assert.Equal(t, 1.0, history.GetSuccessRate())

	stats := s.GetJobStats()
	require.Contains(t, stats, "bad")
	assert.Equal(t, 1, stats["bad"].FailureCount)
	assert.Equal(t, "@hourly", stats["bad"].Schedule)
	assert.NotNil(t, stats["bad"].LastFailure)
	assert.Nil(t, stats["bad"].LastSuccess)
	assert.Equal(t, 2, stats["ok"].SuccessCount)

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestJobHistoryTrim(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+20; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "job", schedule: "@daily"}))

	s.Start()
	require.NoError(t, s.RunJob("job"))
	assert.Error(t, s.RunJob("missing"))
	s.Stop()
}
