package lifecycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickDecrementsOnlyWhileActive(t *testing.T) {
	tm := NewTimer(3)

	r, exp := tm.Tick()
	assert.Equal(t, 3, r)
	assert.False(t, exp)

	require.True(t, tm.Start())
	r, exp = tm.Tick()
	assert.Equal(t, 2, r)
	assert.False(t, exp)
}

func TestExpiresExactlyAtZero(t *testing.T) {
	tm := NewTimer(3)
	var fired int32
	tm.OnExpire(func() { atomic.AddInt32(&fired, 1) })
	require.True(t, tm.Start())

	prev := tm.Remaining()
	for i := 0; i < 2; i++ {
		r, exp := tm.Tick()
		assert.Equal(t, prev-1, r)
		assert.False(t, exp)
		assert.False(t, tm.Expired())
		prev = r
	}
	r, exp := tm.Tick()
	assert.Equal(t, 0, r)
	assert.True(t, exp)
	assert.True(t, tm.Expired())

	// Further ticks are no-ops and never fire again.
	r, exp = tm.Tick()
	assert.Equal(t, 0, r)
	assert.False(t, exp)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestSecondStartDoesNotReset(t *testing.T) {
	tm := NewTimer(900)
	require.True(t, tm.Start())
	tm.Tick()
	tm.Tick()

	assert.False(t, tm.Start())
	assert.False(t, tm.Reset(900))
	assert.Equal(t, 898, tm.Remaining())
}

func TestRunStopsOnExpiry(t *testing.T) {
	tm := NewTimer(2)
	require.True(t, tm.Start())

	ticks := make(chan time.Time, 5)
	for i := 0; i < 5; i++ {
		ticks <- time.Now()
	}

	done := make(chan struct{})
	go func() {
		tm.Run(context.Background(), ticks)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after expiry")
	}
	assert.True(t, tm.Expired())
	assert.Len(t, ticks, 3)
}

func TestRunStopsOnCancel(t *testing.T) {
	tm := NewTimer(10)
	require.True(t, tm.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tm.Run(ctx, make(chan time.Time))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 10, tm.Remaining())
}
