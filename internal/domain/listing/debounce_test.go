package listing

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerRunsOnlyLastCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls int32
	var last atomic.Value
	for _, v := range []string{"a", "ab", "abc"} {
		v := v
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			last.Store(v)
		})
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "abc", last.Load())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
