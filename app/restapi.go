package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type httpGet interface {
	HttpGet(*http.Request) (interface{}, error)
}

type httpGetByID interface {
	HttpGetByID(string, *http.Request) (interface{}, error)
}

type errorBody struct {
	Message string
}

// NotFound renders as HTTP 404
type NotFound string

func (nf NotFound) Error() string {
	return string(nf)
}

// InternalError renders as HTTP 500 when a handler panics with it
type InternalError struct {
	Err error
}

func (ie InternalError) Error() string {
	return ie.Err.Error()
}

func (ie InternalError) Unwrap() error {
	return ie.Err
}

type httpResource struct {
	service string
	get     httpGet
	getByID httpGetByID
}

func writeErr(rw http.ResponseWriter, err error) {
	var nf NotFound
	var ie InternalError
	switch {
	case errors.As(err, &nf):
		rw.WriteHeader(http.StatusNotFound)
	case errors.As(err, &ie):
		rw.WriteHeader(http.StatusInternalServerError)
	default:
		rw.WriteHeader(http.StatusBadRequest)
	}
	body, _ := json.Marshal(errorBody{err.Error()})
	rw.Write(body)
}

func (hr *httpResource) recover(rw http.ResponseWriter) {
	p := recover()
	if p == nil {
		return
	}
	log.Error().
		Interface("panic", p).
		Str("service", hr.service).
		Msg("handler panic")
	err, ok := p.(error)
	if !ok {
		err = fmt.Errorf("%v", p)
	}
	writeErr(rw, InternalError{err})
}

func (hr *httpResource) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	defer hr.recover(rw)
	var response interface{}
	var err error
	switch {
	case hr.get != nil:
		response, err = hr.get.HttpGet(r)
	case hr.getByID != nil:
		response, err = hr.getByID.HttpGetByID(mux.Vars(r)["id"], r)
	}
	if err != nil {
		writeErr(rw, err)
		return
	}
	if response == nil {
		rw.WriteHeader(http.StatusOK)
		return
	}
	if r.FormValue("format") == "text" {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.WriteHeader(http.StatusOK)
		fmt.Fprintf(rw, "%s", response)
		return
	}
	body, err := json.Marshal(response)
	if err != nil {
		writeErr(rw, err)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	rw.Write(body)
}

type mainServer struct {
	http.Server
	fabric *Fabric
	router *mux.Router
}

func newServer(fabric *Fabric) *mainServer {
	router := mux.NewRouter()
	return &mainServer{
		fabric: fabric,
		router: router,
		Server: http.Server{
			Handler: router,
		},
	}
}

func (s *mainServer) Configure(c Config) error {
	s.Addr = c.StrOr("addr", "localhost:8089")
	timeout := c.DurOr("read_timeout", 15*time.Second)
	s.ReadTimeout = timeout
	s.IdleTimeout = timeout
	s.WriteTimeout = timeout
	return nil
}

func (s *mainServer) Start(ctx Context) {
	// routes depend on every singleton, so they are mounted only
	// after the DI container is done
	s.initRestAPI()
}

func (s *mainServer) initRestAPI() {
	names := []string{}
	for service := range s.fabric.singletons {
		names = append(names, service)
	}
	sort.Strings(names)
	hasApi := map[string]bool{}
	for _, service := range names {
		v := s.fabric.singletons[service]
		if get, ok := v.(httpGet); ok {
			hasApi[service] = true
			s.router.Handle(fmt.Sprintf("/api/%s", service), &httpResource{
				service: service,
				get:     get,
			}).Methods("GET")
		}
		if getByID, ok := v.(httpGetByID); ok {
			hasApi[service] = true
			s.router.Handle(fmt.Sprintf("/api/%s/{id}", service), &httpResource{
				service: service,
				getByID: getByID,
			}).Methods("GET")
		}
	}
	s.router.HandleFunc("/api", func(rw http.ResponseWriter, r *http.Request) {
		snapshot := s.fabric.snapshot()
		for k, v := range snapshot {
			if !hasApi[k] {
				continue
			}
			v.Endpoint = fmt.Sprintf("http://%s/api/%s", r.Host, k)
			snapshot[k] = v
		}
		body, _ := json.MarshalIndent(snapshot, "", "  ")
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)
		rw.Write(body)
	}).Methods("GET")
}
