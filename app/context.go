package app

import "context"

type Service interface {
	Start(Context)
}

type Context interface {
	Ctx() context.Context

	// Propagates Done channel from parent context.
	Done() <-chan struct{}

	// Heartbeat tells the Fabric that the service is alive and marks its
	// last update time, shown on the /api endpoint. Mock contexts use it
	// as a blocking hook in unit tests.
	Heartbeat()
}

type serviceContext struct {
	ctx  context.Context
	name string
	sync chan<- string
}

func (sc *serviceContext) Ctx() context.Context {
	return sc.ctx
}

func (sc *serviceContext) Done() <-chan struct{} {
	return sc.ctx.Done()
}

func (sc *serviceContext) Heartbeat() {
	select {
	case <-sc.ctx.Done():
	case sc.sync <- sc.name:
	}
}
