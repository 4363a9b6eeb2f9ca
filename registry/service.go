package registry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/wecode/proxyman/app"
	"github.com/wecode/proxyman/metrics"
	"github.com/wecode/proxyman/pmux"
)

var _ app.Service = &Service{}

// Service exposes the registry on the REST API as /api/registry
type Service struct {
	registry *Registry
	metrics  *metrics.Metrics
	verbose  bool
}

func NewService(m *metrics.Metrics) *Service {
	return &Service{
		registry: Default(),
		metrics:  m,
	}
}

func (s *Service) Configure(c app.Config) error {
	s.verbose = c.BoolOr("trace_picks", false)
	return nil
}

func (s *Service) Start(ctx app.Context) {
	go ctx.Heartbeat()
}

// HttpGet lists every entry in declaration order
func (s *Service) HttpGet(_ *http.Request) (interface{}, error) {
	return s.registry.Entries(), nil
}

// HttpGetByID returns the entry at the given index, or picks one for "random"
func (s *Service) HttpGetByID(id string, r *http.Request) (interface{}, error) {
	if id == "random" {
		return s.pick(r), nil
	}
	i, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid index: %s", id)
	}
	d, ok := s.registry.Get(i)
	if !ok {
		return nil, app.NotFound(fmt.Sprintf("no entry %d", i))
	}
	return d, nil
}

func (s *Service) pick(r *http.Request) pmux.Descriptor {
	d, fallback := s.registry.pick()
	s.metrics.ObservePick(d, fallback)
	ctx, remote := context.Background(), ""
	if r != nil {
		ctx, remote = r.Context(), r.RemoteAddr
	}
	logger := app.Log.From(app.Log.WithStringer(ctx, "proxy", d))
	event := logger.Debug()
	if s.verbose {
		event = logger.Info()
	}
	event.Bool("fallback", fallback).Str("remote", remote).Msg("picked")
	return d
}
