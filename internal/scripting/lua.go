// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package scripting

import (
	"context"
	"sync/atomic"

	"github.com/Shopify/go-lua"

	"github.com/stepwise-game/stepwise/internal/world"
)

// instructions between interrupt checks
const luaHookCount = 1000

// LuaRunner implements Runner on the go-lua interpreter. go-lua has no
// asynchronous interrupt, so Interrupt raises a flag that a count hook and
// every binding poll.
type LuaRunner struct {
	state       *lua.State
	api         *API
	ctx         context.Context
	interrupted atomic.Bool
}

// NewLuaRunner creates a Lua state with the standard libraries and the
// script API registered as globals.
func NewLuaRunner(api *API) *LuaRunner {
	r := &LuaRunner{api: api, ctx: context.Background()}

	l := lua.NewState()
	lua.OpenLibraries(l)
	l.Register("print", r.luaPrint)
	l.Register("tick", r.luaTick)
	l.Register("move", r.luaMove)
	l.Register("pickup", r.luaPickup)
	l.Register("use_key", r.luaUseKey)
	l.Register("look", r.luaLook)
	lua.SetDebugHook(l, r.hook, lua.MaskCount, luaHookCount)

	r.state = l
	return r
}

// Run executes Lua code. The first returned value, if any, becomes the
// result.
func (r *LuaRunner) Run(ctx context.Context, code string) (Result, error) {
	if ctx.Err() != nil || r.interrupted.Load() {
		return Result{}, &ScriptError{Message: "script interrupted", Interrupted: true}
	}
	r.ctx = ctx
	defer func() { r.ctx = context.Background() }()

	l := r.state
	base := l.Top()
	if err := lua.DoString(l, code); err != nil {
		l.SetTop(base)
		return Result{}, &ScriptError{Message: err.Error(), Interrupted: r.interrupted.Load() || ctx.Err() != nil}
	}
	defer l.SetTop(base)

	if l.Top() == base {
		return Result{IsEmpty: true}, nil
	}
	return luaResult(l, base+1), nil
}

// Interrupt stops the currently running script at its next hook or
// binding call. Safe to call from another goroutine.
func (r *LuaRunner) Interrupt() {
	r.interrupted.Store(true)
}

func (r *LuaRunner) stopped() bool {
	return r.interrupted.Load() || r.ctx.Err() != nil
}

func (r *LuaRunner) hook(l *lua.State, _ lua.Debug) {
	if r.stopped() {
		lua.Errorf(l, "script interrupted")
	}
}

// check raises err as a Lua error, and raises if the script was
// interrupted even when err is nil.
func (r *LuaRunner) check(l *lua.State, err error) {
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	if r.stopped() {
		lua.Errorf(l, "script interrupted")
	}
}

func (r *LuaRunner) luaPrint(l *lua.State) int {
	r.check(l, nil)
	n := l.Top()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		s, _ := lua.ToStringMeta(l, i)
		l.Pop(1)
		parts = append(parts, s)
	}
	r.check(l, r.api.Print(r.ctx, parts, "\t"))
	return 0
}

func (r *LuaRunner) luaTick(l *lua.State) int {
	r.check(l, nil)
	r.check(l, r.api.Tick(r.ctx))
	return 0
}

func (r *LuaRunner) luaMove(l *lua.State) int {
	conn := lua.CheckString(l, 1)
	r.check(l, nil)
	r.check(l, r.api.Move(r.ctx, conn))
	return 0
}

func (r *LuaRunner) luaPickup(l *lua.State) int {
	r.check(l, nil)
	item, err := r.api.Pickup(r.ctx)
	r.check(l, err)
	if item == nil {
		l.PushNil()
		return 1
	}
	pushItem(l, *item)
	return 1
}

func (r *LuaRunner) luaUseKey(l *lua.State) int {
	key := lua.CheckString(l, 1)
	conn := lua.CheckString(l, 2)
	r.check(l, nil)
	r.check(l, r.api.UseKey(r.ctx, key, conn))
	return 0
}

func (r *LuaRunner) luaLook(l *lua.State) int {
	r.check(l, nil)
	view, err := r.api.Look(r.ctx)
	r.check(l, err)

	l.NewTable()
	l.PushString(view.Room)
	l.SetField(-2, "room")
	l.PushBoolean(view.Solved)
	l.SetField(-2, "solved")
	l.PushInteger(view.Moves)
	l.SetField(-2, "moves")

	l.NewTable()
	for i, exit := range view.Exits {
		l.NewTable()
		l.PushString(exit.Name)
		l.SetField(-2, "name")
		l.PushString(exit.To)
		l.SetField(-2, "to")
		l.PushBoolean(exit.Locked)
		l.SetField(-2, "locked")
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "exits")

	if view.Item != nil {
		pushItem(l, *view.Item)
		l.SetField(-2, "item")
	}

	l.NewTable()
	for i, item := range view.Inventory {
		pushItem(l, item)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "inventory")
	return 1
}

func pushItem(l *lua.State, item world.Item) {
	l.NewTable()
	l.PushString(item.Key)
	l.SetField(-2, "key")
}

func luaResult(l *lua.State, index int) Result {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return Result{IsEmpty: true}
	case lua.TypeBoolean:
		return Result{Value: l.ToBoolean(index)}
	case lua.TypeNumber:
		if n, ok := l.ToInteger(index); ok {
			if f, _ := l.ToNumber(index); float64(n) == f {
				return Result{Value: n}
			}
		}
		f, _ := l.ToNumber(index)
		return Result{Value: f}
	case lua.TypeString:
		s, _ := l.ToString(index)
		return Result{Value: s}
	}
	s, _ := lua.ToStringMeta(l, index)
	l.Pop(1)
	return Result{Value: s}
}

// Compile-time interface check
var _ Runner = (*LuaRunner)(nil)
