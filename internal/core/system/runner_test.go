package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner(zap.NewNop())
	r.Register(recorder{"output", PhaseOutput, &log})
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"step-a", PhaseSimulate, &log})
	r.Register(recorder{"step-b", PhaseSimulate, &log})
	r.Register(recorder{"input", PhaseInput, &log})

	r.Tick(time.Second / 60)
	assert.Equal(t, []string{"input", "step-a", "step-b", "cleanup", "output"}, log)

	log = nil
	r.TickPhase(PhaseSimulate, 0)
	assert.Equal(t, []string{"step-a", "step-b"}, log)

	total, _ := r.Ticks()
	assert.Equal(t, uint64(1), total)
}

type sleeper struct{ d time.Duration }

func (sleeper) Phase() Phase { return PhaseUpdate }

func (s sleeper) Update(time.Duration) { time.Sleep(s.d) }

func TestRunnerCountsOverruns(t *testing.T) {
	r := NewRunner(zap.NewNop())
	r.Register(sleeper{5 * time.Millisecond})

	r.Tick(time.Millisecond)
	r.Tick(time.Second)
	total, overran := r.Ticks()
	assert.Equal(t, uint64(2), total)
	assert.Equal(t, uint64(1), overran)
}
