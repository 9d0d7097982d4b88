package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShippedFormulas(t *testing.T) {
	e, err := NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 10.0, e.LevelDuration(0))
	assert.Equal(t, 14.0, e.LevelDuration(2))
	assert.Equal(t, 2.0, e.SlideDuration(2))
	assert.Equal(t, 312, e.Score(3.129))
}

func TestFallbacksWhenScriptsMissing(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 12.0, e.LevelDuration(1))
	assert.Equal(t, 150, e.Score(1.5))
}

func TestFallbackOnBadResults(t *testing.T) {
	e, err := NewEngineFromSource(`
function calc_level_duration(level) return "soon" end
function calc_score(h) error("boom") end
function calc_slide_duration(level) return -1 end
`, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 10.0, e.LevelDuration(0))
	assert.Equal(t, 250, e.Score(2.5))
	assert.Equal(t, 1.0, e.SlideDuration(0))
}

func TestBadSourceRejected(t *testing.T) {
	_, err := NewEngineFromSource("function (", zap.NewNop())
	assert.Error(t, err)
}
