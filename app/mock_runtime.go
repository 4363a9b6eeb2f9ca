package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

func MockCtx() *mockCtx {
	ctx, cancel := context.WithCancel(context.Background())
	return &mockCtx{
		ctx:    ctx,
		Cancel: cancel,
		Wait:   make(chan bool),
	}
}

// MockStart starts a service on a spinning mock context and returns
// the cancel function
func MockStart(s Service) func() {
	ctx := MockCtx()
	ctx.Start(s)
	return ctx.Cancel
}

type mockCtx struct {
	ctx    context.Context
	Cancel func()
	Wait   chan bool
	name   string
	spin   atomic.Bool
}

func (a *mockCtx) Start(s Service) {
	a.Spin()
	s.Start(a)
}

// Spin makes heartbeats non-blocking
func (a *mockCtx) Spin() {
	a.spin.Store(true)
}

// WaitAndSpin waits for one heartbeat before going non-blocking
func (a *mockCtx) WaitAndSpin() {
	<-a.Wait
	a.Spin()
}

func (a *mockCtx) Ctx() context.Context {
	return a.ctx
}

func (a *mockCtx) Done() <-chan struct{} {
	return a.ctx.Done()
}

func (a *mockCtx) Heartbeat() {
	if a.spin.Load() {
		return
	}
	log.Trace().Str("service", a.name).Msg("heartbeat mock")
	select {
	case <-a.ctx.Done():
	case a.Wait <- true:
	}
}

type Singletons map[string]interface{}

type MockRuntime map[string]*mockCtx

// MockStart configures every configurable singleton with an empty config
// and starts every service on its own mock context
func (s Singletons) MockStart() MockRuntime {
	r := MockRuntime{}
	for _, v := range s {
		c, ok := v.(configurable)
		if !ok {
			continue
		}
		err := c.Configure(nil)
		if err != nil {
			panic(err)
		}
	}
	for k, v := range s {
		service, ok := v.(Service)
		if !ok {
			continue
		}
		ctx := MockCtx()
		ctx.name = k
		service.Start(ctx)
		r[k] = ctx
	}
	return r
}

func MockStartSpin[T any](this *T, other ...any) (*T, MockRuntime) {
	sgltns := Singletons{"this": this}
	for i, service := range other {
		sgltns[fmt.Sprintf("service%d", i+1)] = service
	}
	runtime := sgltns.MockStart()
	for k := range runtime {
		runtime[k].Spin()
	}
	return this, runtime
}

func (r MockRuntime) Context(main ...string) context.Context {
	if len(main) == 0 {
		main = append(main, "this")
	}
	this, ok := r[main[0]]
	if !ok {
		panic("no main service found")
	}
	return this.ctx
}

func (r MockRuntime) Stop() {
	for _, v := range r {
		v.Cancel()
	}
}
