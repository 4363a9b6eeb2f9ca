package app

import (
	"fmt"
	"net/http"
)

func newServiceA() *serviceA {
	return &serviceA{
		configured: make(chan Config, 1),
		Number:     100500,
	}
}

type serviceA struct {
	configured chan Config
	Number     int
}

func (a *serviceA) Configure(c Config) error {
	a.configured <- c
	return nil
}

func (a *serviceA) Start(ctx Context) {
	go ctx.Heartbeat()
}

func (a *serviceA) HttpGet(*http.Request) (interface{}, error) {
	return a.Number, nil
}

func (a *serviceA) HttpGetByID(id string, r *http.Request) (interface{}, error) {
	switch id {
	case "error":
		return nil, fmt.Errorf("just error: %s", id)
	case "not-found":
		return nil, NotFound("no ID found")
	case "soft":
		panic(fmt.Errorf("panic with error: %s", id))
	case "hard":
		panic("panic with string")
	default:
		return id, nil
	}
}
