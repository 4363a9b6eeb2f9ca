package app

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	_ "net/http/pprof"
)

// Fabric wires services from Factories, configures and starts them, and
// keeps them running until the parent context is done.
type Fabric struct {
	Factories Factories

	singletons    Singletons
	services      map[string]Service
	contexts      map[string]*serviceContext
	updated       map[string]time.Time
	started       time.Time
	configuration configuration

	syncService chan string
	askStats    chan chan stats

	readyOnce sync.Once
	ready     chan struct{}
}

type stat struct {
	Endpoint string `json:",omitempty"`
	Started  time.Time
	Updated  time.Time
}

type stats map[string]stat

func Run(ctx context.Context, f Factories) {
	(&Fabric{Factories: f}).Start(ctx)
}

// Ready is closed once every service has been started
func (f *Fabric) Ready() <-chan struct{} {
	return f.readyChan()
}

func (f *Fabric) readyChan() chan struct{} {
	f.readyOnce.Do(func() {
		f.ready = make(chan struct{})
	})
	return f.ready
}

func (f *Fabric) Start(ctx context.Context) {
	f.syncService = make(chan string)
	f.askStats = make(chan chan stats)
	f.updated = map[string]time.Time{}
	f.contexts = map[string]*serviceContext{}
	f.services = map[string]Service{}
	f.started = time.Now()
	f.loadConfiguration()
	configureLogging(f.configuration["log"])
	// REST API attaches to the server router
	f.Factories["server"] = newServer
	// server needs fabric for the /api snapshot
	f.Factories["fabric"] = func() *Fabric {
		return f
	}
	singletons, err := f.Factories.Init()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot wire services")
	}
	f.singletons = singletons

	if f.configuration["pprof"].BoolOr("enable", false) {
		addr := f.configuration["pprof"].StrOr("addr", "localhost:6060")
		runtime.SetBlockProfileRate(1)
		runtime.SetMutexProfileFraction(1)
		f.singletons["pprof"] = &http.Server{Addr: addr}
		log.Info().Str("addr", addr).Msg("enabled pprof")
	}

	monitor := &monitorServers{Singletons: f.singletons}
	// every ListenAndServe singleton runs under the monitor service
	f.services["monitor"] = monitor

	f.initServices()
	f.configureServices()
	go f.sync(ctx)
	f.startAll(ctx)
	close(f.readyChan())

	monitor.Wait()
}

// Handler exposes the REST API router, mostly for tests
func (f *Fabric) Handler() http.Handler {
	return f.singletons["server"].(*mainServer).router
}

func (f *Fabric) loadConfiguration() {
	conf, err := getConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load configuration")
	}
	f.configuration = conf
}

func (f *Fabric) initServices() {
	for k, v := range f.singletons {
		srv, ok := v.(Service)
		if !ok {
			continue
		}
		f.services[k] = srv
	}
}

func (f *Fabric) configureServices() {
	for service, s := range f.singletons {
		c, ok := s.(configurable)
		if !ok {
			continue
		}
		err := c.Configure(f.configuration[service])
		if err != nil {
			log.Fatal().Err(err).
				Str("service", service).
				Msg("cannot configure")
		}
	}
}

func (f *Fabric) startAll(ctx context.Context) {
	for service := range f.services {
		log.Debug().Str("service", service).Msg("starting")
		f.contexts[service] = &serviceContext{
			ctx:  ctx,
			sync: f.syncService,
			name: service,
		}
		f.services[service].Start(f.contexts[service])
	}
	log.Debug().Msg("all services started")
}

func (f *Fabric) snapshot() stats {
	resp := make(chan stats)
	f.askStats <- resp
	return <-resp
}

func (f *Fabric) sync(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp := <-f.askStats:
			s := stats{}
			for k := range f.services {
				s[k] = stat{
					Started: f.started,
					Updated: f.updated[k],
				}
			}
			resp <- s
		case service := <-f.syncService:
			f.updated[service] = time.Now()
		}
	}
}

type aServer interface {
	ListenAndServe() error
	Close() error
}

type monitorServers struct {
	sync.WaitGroup
	Singletons
}

func (m *monitorServers) Start(ctx Context) {
	for s, v := range m.Singletons {
		srv, ok := v.(aServer)
		if !ok {
			continue
		}
		m.Add(1)
		go m.closeOnDone(ctx.Done(), s, srv)
		go m.listenAndServe(s, srv)
	}
}

func (m *monitorServers) closeOnDone(done <-chan struct{}, service string, srv aServer) {
	<-done
	err := srv.Close()
	log.Warn().Str("service", service).Err(err).Msg("parent context done")
}

func (m *monitorServers) listenAndServe(service string, server aServer) {
	defer m.Done()
	log.Info().Str("service", service).Msg("starting")
	err := server.ListenAndServe()
	log.Warn().Str("service", service).Err(err).Msg("stopped")
}
