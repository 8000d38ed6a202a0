package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/game/targeting"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

// SelectModeHook is the Lua global a policy script defines:
//
//	function select_mode(tower) return "nearest" end
//
// tower is a table with id, kind, class, ability, level, range, damage,
// fire_rate_ms, targeting and default_mode fields. Returning nil keeps the
// default mode.
const SelectModeHook = "select_mode"

// Policy owns one sandboxed LState running a targeting policy script.
//
// Policy is safe for concurrent use; calls are serialized on the single LState.
type Policy struct {
	mu        sync.Mutex
	L         *lua.LState
	name      string
	instLimit int
	logger    *zap.Logger
}

// LoadPolicy reads and runs the policy script at path.
//
// Precondition: path must be a readable Lua file; logger must be non-nil.
// Postcondition: Returns a ready Policy or an error on read or Lua load failure.
func LoadPolicy(path string, instLimit int, logger *zap.Logger) (*Policy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading policy %q: %w", path, err)
	}
	return LoadPolicyString(path, string(src), instLimit, logger)
}

// LoadPolicyString runs src as a policy script named name.
//
// Postcondition: Returns a ready Policy or an error on Lua load failure.
func LoadPolicyString(name, src string, instLimit int, logger *zap.Logger) (*Policy, error) {
	p := &Policy{name: name, instLimit: instLimit, logger: logger}
	L := NewSandboxedState(instLimit)
	p.registerModules(L)
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading policy %q: %w", name, err)
	}
	L.RemoveContext()
	p.L = L
	return p, nil
}

// Close releases the Lua state. Safe to call multiple times.
func (p *Policy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.L != nil {
		p.L.Close()
		p.L = nil
	}
}

// SelectMode asks the script for t's targeting mode.
//
// Postcondition: Returns (mode, true) only for a known mode name. A missing
// hook, a nil result, an unknown name, or a Lua runtime error returns false;
// errors and unknown names are logged at Warn level and never propagated.
func (p *Policy) SelectMode(t *tower.Tower) (targeting.Mode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.L == nil {
		return "", false
	}
	L := p.L

	fn := L.GetGlobal(SelectModeHook)
	if fn.Type() != lua.LTFunction {
		return "", false
	}

	cancel := limitInstructions(L, p.instLimit)
	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, towerTable(L, t))
	cancel()
	L.RemoveContext()
	if err != nil {
		p.logger.Warn("scripting: Lua runtime error",
			zap.String("policy", p.name),
			zap.String("hook", SelectModeHook),
			zap.String("tower_id", t.ID),
			zap.Error(err),
		)
		return "", false
	}

	ret := L.Get(-1)
	L.Pop(1)
	if ret == lua.LNil {
		return "", false
	}
	m, err := targeting.ParseMode(ret.String())
	if err != nil {
		p.logger.Warn("scripting: policy returned unknown mode",
			zap.String("policy", p.name),
			zap.String("tower_id", t.ID),
			zap.String("mode", ret.String()),
		)
		return "", false
	}
	return m, true
}

// ModeFor returns the script's mode for t, falling back to targeting.ModeFor.
// A nil Policy always falls back.
func (p *Policy) ModeFor(t *tower.Tower) targeting.Mode {
	if p != nil {
		if m, ok := p.SelectMode(t); ok {
			return m
		}
	}
	return targeting.ModeFor(t)
}

func towerTable(L *lua.LState, t *tower.Tower) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(t.ID))
	L.SetField(tbl, "kind", lua.LString(t.Kind))
	L.SetField(tbl, "class", lua.LString(t.Class))
	L.SetField(tbl, "ability", lua.LString(t.Ability))
	L.SetField(tbl, "level", lua.LNumber(t.Level))
	L.SetField(tbl, "range", lua.LNumber(t.EffectiveRange()))
	L.SetField(tbl, "damage", lua.LNumber(t.Damage))
	L.SetField(tbl, "fire_rate_ms", lua.LNumber(t.FireRateMs()))
	L.SetField(tbl, "targeting", lua.LString(t.Targeting))
	L.SetField(tbl, "default_mode", lua.LString(targeting.ModeFor(t)))
	return tbl
}
