package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Fallbacks used when a script function is missing or fails.
const (
	defaultInitialDuration   = 10.0
	defaultDurationIncrement = 2.0
	defaultSlideBase         = 1.0
	defaultSlidePerLevel     = 0.5
)

// Engine wraps a single gopher-lua VM holding the round formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir/round.
// A missing directory leaves the Go fallbacks in charge.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(filepath.Join(scriptsDir, "round")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load round scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromSource builds an engine from inline Lua, for tools and tests.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// LevelDuration returns the countdown length in seconds for level.
func (e *Engine) LevelDuration(level int) float64 {
	fallback := defaultInitialDuration + float64(level)*defaultDurationIncrement
	v, ok := e.callNumber("calc_level_duration", lua.LNumber(level))
	if !ok || v <= 0 {
		return fallback
	}
	return v
}

// SlideDuration returns how long a spectator replay pans up to level, in seconds.
func (e *Engine) SlideDuration(level int) float64 {
	fallback := defaultSlideBase + float64(level)*defaultSlidePerLevel
	v, ok := e.callNumber("calc_slide_duration", lua.LNumber(level))
	if !ok || v < 0 {
		return fallback
	}
	return v
}

// Score converts a tower height in physical units to leaderboard points.
func (e *Engine) Score(height float64) int {
	fallback := int(height * 100)
	v, ok := e.callNumber("calc_score", lua.LNumber(height))
	if !ok {
		return fallback
	}
	return int(v)
}

func (e *Engine) callNumber(name string, args ...lua.LValue) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Debug("lua function not found, using fallback", zap.String("fn", name))
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call failed", zap.String("fn", name), zap.Error(err))
		return 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("fn", name), zap.String("type", result.Type().String()))
		return 0, false
	}
	return float64(n), true
}
