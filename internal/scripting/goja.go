// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package scripting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/stepwise-game/stepwise/internal/world"
)

// GojaRunner implements Runner using the Goja JavaScript interpreter.
type GojaRunner struct {
	vm  *goja.Runtime
	api *API
	ctx context.Context
}

// NewGojaRunner creates a new Goja-based script runner bound to api.
func NewGojaRunner(api *API) (*GojaRunner, error) {
	r := &GojaRunner{api: api, ctx: context.Background()}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	r.vm = vm

	if err := r.register(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *GojaRunner) register() error {
	funcs := []struct {
		name string
		fn   func(goja.FunctionCall) goja.Value
	}{
		{"print", r.jsPrint},
		{"tick", r.jsTick},
		{"move", r.jsMove},
		{"pickup", r.jsPickup},
		{"useKey", r.jsUseKey},
		{"look", r.jsLook},
	}
	for _, f := range funcs {
		if err := r.vm.Set(f.name, f.fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

// Run executes JavaScript code and returns the result.
func (r *GojaRunner) Run(ctx context.Context, code string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &ScriptError{Message: "script interrupted", Interrupted: true}
	}
	r.ctx = ctx
	defer func() { r.ctx = context.Background() }()

	result, err := r.vm.RunString(code)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) || ctx.Err() != nil {
			return Result{}, &ScriptError{Message: "script interrupted", Interrupted: true}
		}
		// Convert Goja exceptions to regular errors with clean messages
		if jsErr, ok := err.(*goja.Exception); ok {
			return Result{}, &ScriptError{Message: jsErr.String()}
		}
		return Result{}, err
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return Result{IsEmpty: true}, nil
	}
	return Result{Value: result.Export()}, nil
}

// Interrupt stops the currently running script.
// Safe to call from another goroutine.
func (r *GojaRunner) Interrupt() {
	r.vm.Interrupt("script interrupted")
}

// throw raises err as a JavaScript exception.
func (r *GojaRunner) throw(err error) {
	panic(r.vm.NewGoError(err))
}

func (r *GojaRunner) jsPrint(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = arg.String()
	}
	if err := r.api.Print(r.ctx, parts, " "); err != nil {
		r.throw(err)
	}
	return goja.Undefined()
}

func (r *GojaRunner) jsTick(goja.FunctionCall) goja.Value {
	if err := r.api.Tick(r.ctx); err != nil {
		r.throw(err)
	}
	return goja.Undefined()
}

func (r *GojaRunner) jsMove(call goja.FunctionCall) goja.Value {
	if err := r.api.Move(r.ctx, r.stringArg(call, 0, "connection")); err != nil {
		r.throw(err)
	}
	return goja.Undefined()
}

func (r *GojaRunner) jsPickup(goja.FunctionCall) goja.Value {
	item, err := r.api.Pickup(r.ctx)
	if err != nil {
		r.throw(err)
	}
	if item == nil {
		return goja.Null()
	}
	return r.keyObject(*item)
}

func (r *GojaRunner) jsUseKey(call goja.FunctionCall) goja.Value {
	key := r.stringArg(call, 0, "key")
	conn := r.stringArg(call, 1, "connection")
	if err := r.api.UseKey(r.ctx, key, conn); err != nil {
		r.throw(err)
	}
	return goja.Undefined()
}

func (r *GojaRunner) jsLook(goja.FunctionCall) goja.Value {
	view, err := r.api.Look(r.ctx)
	if err != nil {
		r.throw(err)
	}
	return r.vm.ToValue(view)
}

// keyObject exposes a picked-up key with a use(connection) method.
func (r *GojaRunner) keyObject(item world.Item) goja.Value {
	obj := r.vm.NewObject()
	_ = obj.Set("key", item.Key)
	_ = obj.Set("use", func(call goja.FunctionCall) goja.Value {
		if err := r.api.UseKey(r.ctx, item.Key, r.stringArg(call, 0, "connection")); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	_ = obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(item.String())
	})
	return obj
}

func (r *GojaRunner) stringArg(call goja.FunctionCall, i int, name string) string {
	arg := call.Argument(i)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		panic(r.vm.NewTypeError("missing argument: %s", name))
	}
	return arg.String()
}

// Compile-time interface check
var _ Runner = (*GojaRunner)(nil)
