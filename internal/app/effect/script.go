package effect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skirmish/internal/domain/game"

	lua "github.com/yuin/gopher-lua"
)

var ErrScript = errors.New("effect script failed")

const scriptTimeout = time.Second

// runScript executes a catalog-provided Lua step. Scripts see the globals
// subject, targeted and visible, and may call damage, mark and add_score.
func (e *Engine) runScript(ctx context.Context, spec game.EffectSpec, rc *RunContext) error {
	if !e.pay(spec, rc.Subject) {
		return nil
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	sctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()
	L.SetContext(sctx)

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("%w: open %s: %v", ErrScript, lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "package"} {
		L.SetGlobal(name, lua.LNil)
	}
	bindScriptAPI(L, rc)

	if err := L.DoString(spec.Script); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScript, spec.Name, err)
	}
	return nil
}

func bindScriptAPI(L *lua.LState, rc *RunContext) {
	p, m := rc.Subject, rc.Match

	L.SetGlobal("subject", lua.LString(p.Name))
	targeted := L.NewTable()
	for i, n := range rc.Targeted.Names() {
		targeted.RawSetInt(i+1, lua.LString(n))
	}
	L.SetGlobal("targeted", targeted)
	visible := L.NewTable()
	idx := 1
	for _, o := range m.Others(p) {
		if o.Position != nil && m.Board.CanSee(p.Position, o.Position) {
			visible.RawSetInt(idx, lua.LString(o.Name))
			idx++
		}
	}
	L.SetGlobal("visible", visible)

	victim := func(L *lua.LState) *game.Player {
		name := L.CheckString(1)
		v, ok := m.Player(name)
		if !ok || v == p {
			L.ArgError(1, "unknown target "+name)
			return nil
		}
		return v
	}
	L.SetGlobal("damage", L.NewFunction(func(L *lua.LState) int {
		v := victim(L)
		v.TakeDamage(p.Name, L.CheckInt(2))
		rc.Targeted.Add(v.Name)
		rc.publish(game.UpdateDamage, v.Name, "scripted by "+p.Name)
		return 0
	}))
	L.SetGlobal("mark", L.NewFunction(func(L *lua.LState) int {
		v := victim(L)
		v.TakeMarks(p.Name, L.CheckInt(2))
		rc.Targeted.Add(v.Name)
		rc.publish(game.UpdateDamage, v.Name, "marked by "+p.Name)
		return 0
	}))
	L.SetGlobal("add_score", L.NewFunction(func(L *lua.LState) int {
		p.Score += L.CheckInt(1)
		rc.publish(game.UpdateScore, p.Name, "")
		return 0
	}))
}
