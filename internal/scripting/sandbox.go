// Package scripting runs sandboxed GopherLua targeting policies that let
// content authors override which targeting mode each tower uses.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the Lua opcodes one policy call may execute
// when no limit is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals are cleared from every policy state.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// opBudget is a context that cancels itself once its opcode allowance is spent.
// The VM polls Done before every opcode, so each poll is charged as one opcode.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *opBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newOpBudget(ops int) *opBudget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &opBudget{Context: ctx, cancel: cancel}
	b.left.Store(int64(ops))
	return b
}

// NewSandboxedState returns a policy LState with only the base, table, string
// and math libraries and an opcode budget for its first run.
//
// Precondition: instLimit >= 0; 0 selects DefaultInstructionLimit.
// Postcondition: The caller owns the returned LState and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	limitInstructions(L, instLimit)
	return L
}

// limitInstructions gives the next execution on L a fresh budget of limit opcodes.
func limitInstructions(L *lua.LState, limit int) context.CancelFunc {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	b := newOpBudget(limit)
	L.SetContext(b)
	return b.cancel
}
