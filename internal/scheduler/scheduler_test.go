package scheduler

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFunc(t *testing.T) {
	s := NewScheduler(log.New(io.Discard))

	require.NoError(t, s.RegisterFunc("@hourly", "emoji-sweep", func() error { return nil }))
	err := s.RegisterFunc("@daily", "emoji-sweep", func() error { return nil })
	assert.Error(t, err, "duplicate names are rejected")

	err = s.RegisterFunc("not a schedule", "broken", func() error { return nil })
	assert.Error(t, err)

	jobs := s.Jobs()
	assert.Len(t, jobs, 1)
	assert.Contains(t, jobs, "emoji-sweep")
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(log.New(io.Discard))

	var ran atomic.Int32
	require.NoError(t, s.RegisterFunc("@every 1s", "tick", func() error {
		ran.Add(1)
		return errors.New("failures are logged, not fatal")
	}))

	s.Start()
	assert.Eventually(t, func() bool { return ran.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	assert.False(t, s.Jobs()["tick"].IsZero(), "next run is known once started")
}
