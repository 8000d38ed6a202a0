package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/game/targeting"
)

// registerModules installs the engine global into L:
//
//	engine.modes                 array of every targeting mode name
//	engine.FASTEST_LEVEL, ...    level escalation thresholds
//	engine.log(msg)              debug log line tagged with the policy name
//
// Precondition: L must be from NewSandboxedState.
func (p *Policy) registerModules(L *lua.LState) {
	engine := L.NewTable()

	modes := L.NewTable()
	for _, m := range targeting.Modes {
		modes.Append(lua.LString(m))
	}
	L.SetField(engine, "modes", modes)

	L.SetField(engine, "FASTEST_LEVEL", lua.LNumber(targeting.FastestLevel))
	L.SetField(engine, "LOWEST_HP_LEVEL", lua.LNumber(targeting.LowestHPLevel))
	L.SetField(engine, "THREAT_LEVEL", lua.LNumber(targeting.ThreatLevel))

	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		p.logger.Debug("policy log",
			zap.String("policy", p.name),
			zap.String("msg", L.CheckString(1)),
		)
		return 0
	}))

	L.SetGlobal("engine", engine)
}
