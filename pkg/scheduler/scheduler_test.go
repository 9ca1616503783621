package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/scheduler"
)

// 每年 1 月 1 日才会触发，测试中只通过 RunNow 执行.
const rarely = "0 0 1 1 *"

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler()
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func waitRuns(t *testing.T, s *scheduler.Scheduler, name string, runs int64) scheduler.JobInfo {
	t.Helper()

	var info scheduler.JobInfo

	require.Eventually(t, func() bool {
		var err error
		info, err = s.GetJobInfoByName(name)

		return err == nil && info.Runs >= runs && info.Status != scheduler.StatusRunning
	}, 5*time.Second, 10*time.Millisecond)

	return info
}

func TestRunNowRecordsSuccess(t *testing.T) {
	s := newScheduler(t)

	type key struct{}

	ctx := context.WithValue(context.Background(), key{}, "v")
	got := make(chan any, 1)

	require.NoError(t, s.AddCron(ctx, "ok", rarely, func(ctx context.Context) error {
		got <- ctx.Value(key{})

		return nil
	}))

	s.Start()
	require.NoError(t, s.RunNow("ok"))

	info := waitRuns(t, s, "ok", 1)
	assert.Equal(t, scheduler.StatusScheduled, info.Status)
	assert.False(t, info.LastSuccess.IsZero())
	assert.Empty(t, info.Error)
	assert.Equal(t, "v", <-got)
}

func TestJobErrorsAndPanics(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddCron(context.Background(), "fails", rarely, func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.AddCron(context.Background(), "panics", rarely, func(context.Context) error {
		panic("oops")
	}))

	s.Start()
	require.NoError(t, s.RunNow("fails"))
	require.NoError(t, s.RunNow("panics"))

	info := waitRuns(t, s, "fails", 1)
	assert.Equal(t, scheduler.StatusError, info.Status)
	assert.Equal(t, "boom", info.Error)
	assert.True(t, info.LastSuccess.IsZero())

	info = waitRuns(t, s, "panics", 1)
	assert.Equal(t, scheduler.StatusError, info.Status)
	assert.Contains(t, info.Error, "oops")
}

func TestAddCronValidation(t *testing.T) {
	s := newScheduler(t)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddCron(context.Background(), "a", rarely, noop))
	assert.Error(t, s.AddCron(context.Background(), "a", rarely, noop))
	assert.Error(t, s.AddCron(context.Background(), "b", "not a cron", noop))

	require.NoError(t, s.RemoveJobByName("a"))
	assert.Error(t, s.RemoveJobByName("a"))
	assert.Error(t, s.RunNow("a"))
	assert.Empty(t, s.GetJobInfos())
}
