package main

import (
	"context"
	"errors"
	"fmt"
	gorillamux "github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/nest"
	"github.com/shimmeringbee/panel/config"
	"github.com/shimmeringbee/panel/interface/http/pprof"
	"github.com/shimmeringbee/panel/interface/http/v1"
	"github.com/shimmeringbee/panel/state"
	"net"
	"net/http"
	"time"
)

type StartedInterface struct {
	Name     string
	Shutdown func() error
}

const DefaultShutdownTimeout = 5 * time.Second

// Services are the components an interface may expose.
type Services struct {
	Controller v1.Controller
	EventBus   state.EventSubscriber
	Metrics    http.Handler
}

func startInterfaces(cfgs []config.InterfaceConfig, s Services, l logwrap.Logger) ([]StartedInterface, error) {
	var retIntfs []StartedInterface

	for _, cfg := range cfgs {
		if shutdown, err := startInterface(cfg, s, l); err != nil {
			return retIntfs, fmt.Errorf("failed to start interface '%s': %w", cfg.Name, err)
		} else {
			retIntfs = append(retIntfs, StartedInterface{
				Name:     cfg.Name,
				Shutdown: shutdown,
			})
		}
	}

	return retIntfs, nil
}

func startInterface(cfg config.InterfaceConfig, s Services, l logwrap.Logger) (func() error, error) {
	wl := logwrap.New(nest.Wrap(l))
	wl.AddOptionsToLogger(logwrap.Datum("interface", cfg.Name))

	switch iCfg := cfg.Config.(type) {
	case *config.HTTPInterfaceConfig:
		wl.AddOptionsToLogger(logwrap.Source("http"))
		return startHTTPInterface(*iCfg, s, wl)
	default:
		return nil, fmt.Errorf("unknown interface type loaded: %s", cfg.Type)
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}

	return false
}

func constructHTTPRouter(cfg config.HTTPInterfaceConfig, s Services, l logwrap.Logger) http.Handler {
	r := gorillamux.NewRouter()

	if containsString(cfg.EnabledAPIs, "v1") {
		l.LogInfo(context.Background(), "Mounting v1 API endpoint on /api/v1.")

		v1Router := v1.ConstructRouter(s.Controller, s.EventBus, l)
		r.PathPrefix("/api/v1").Handler(http.StripPrefix("/api/v1", v1Router))
	}

	if containsString(cfg.EnabledAPIs, "metrics") && s.Metrics != nil {
		l.LogInfo(context.Background(), "Mounting metrics endpoint on /metrics.")
		r.Path("/metrics").Handler(s.Metrics)
	}

	if containsString(cfg.EnabledAPIs, "pprof") {
		l.LogWarn(context.Background(), "Mounting pprof endpoint on /debug/pprof, this exposes process internals.")
		r.PathPrefix("/debug/pprof").Handler(http.StripPrefix("/debug/pprof", pprof.ConstructRouter(l)))
	}

	return r
}

func startHTTPInterface(cfg config.HTTPInterfaceConfig, s Services, l logwrap.Logger) (func() error, error) {
	bindAddress := fmt.Sprintf(":%d", cfg.Port)

	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on '%s': %w", bindAddress, err)
	}

	srv := &http.Server{Handler: constructHTTPRouter(cfg, s, l), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.LogError(context.Background(), "Failed to serve http.", logwrap.Err(err))
		}
	}()

	l.LogInfo(context.Background(), "HTTP interface listening.", logwrap.Datum("address", listener.Addr().String()))

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		return srv.Shutdown(ctx)
	}, nil
}
