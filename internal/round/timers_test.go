package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimersFireInDueOrder(t *testing.T) {
	tm := NewTimers()
	var got []string
	tm.After(2, func() { got = append(got, "b") })
	tm.After(1, func() { got = append(got, "a") })
	tm.After(2, func() { got = append(got, "c") })

	tm.Advance(0.5)
	assert.Empty(t, got)
	tm.Advance(5)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, tm.Pending())
}

func TestTimersCancel(t *testing.T) {
	tm := NewTimers()
	fired := 0
	h := tm.After(1, func() { fired++ })
	tm.After(1, func() { fired += 10 })
	tm.Cancel(h)
	tm.Cancel(h)
	tm.Advance(1)
	assert.Equal(t, 10, fired)

	tm.After(1, func() { fired++ })
	tm.CancelAll()
	tm.Advance(2)
	assert.Equal(t, 10, fired)
}

func TestTimersScheduledFromCallback(t *testing.T) {
	tm := NewTimers()
	var got []float64
	tm.After(1, func() {
		got = append(got, tm.Now())
		tm.After(0, func() { got = append(got, -1) })
		tm.After(3, func() { got = append(got, 4) })
	})
	tm.Advance(2)
	assert.Equal(t, []float64{2, -1}, got)
	tm.Advance(3)
	assert.Equal(t, []float64{2, -1, 4}, got)
}

func TestTimersCancelAllFromCallback(t *testing.T) {
	tm := NewTimers()
	fired := false
	tm.After(1, func() { tm.CancelAll() })
	tm.After(1, func() { fired = true })
	tm.Advance(1)
	assert.False(t, fired)
}
