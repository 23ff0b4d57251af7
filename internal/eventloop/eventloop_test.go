package eventloop_test

import (
	"testing"
	"time"

	"ecmalite/internal/eventloop"

	"github.com/stretchr/testify/require"
)

func TestMicrotasksDrainBeforeMacrotasks(t *testing.T) {
	l := eventloop.New(4)
	var order []string

	l.EnqueueMicrotask(func() { order = append(order, "micro1") })
	l.SetTimeout(0, func() { order = append(order, "timer") })
	l.EnqueueMicrotask(func() { order = append(order, "micro2") })

	l.Run()
	require.Equal(t, []string{"micro1", "micro2", "timer"}, order)
}

func TestMicrotaskEnqueuedDuringMicrotaskStillDrainsFirst(t *testing.T) {
	l := eventloop.New(4)
	var order []string

	l.EnqueueMicrotask(func() {
		order = append(order, "outer")
		l.EnqueueMicrotask(func() { order = append(order, "nested") })
	})
	l.SetTimeout(0, func() { order = append(order, "timer") })

	l.Run()
	require.Equal(t, []string{"outer", "nested", "timer"}, order)
}

func TestClearTimerCancelsPendingTimeout(t *testing.T) {
	l := eventloop.New(4)
	fired := false
	h := l.SetTimeout(0, func() { fired = true })
	l.ClearTimer(h)
	l.Run()
	require.False(t, fired)
}

func TestWorkerResultDeliveredAsMacrotask(t *testing.T) {
	l := eventloop.New(2)
	var got any
	l.PostWorkerResult(func() any {
		time.Sleep(5 * time.Millisecond)
		return 42
	}, func(v any) { got = v })

	l.Run()
	require.Equal(t, 42, got)
}
