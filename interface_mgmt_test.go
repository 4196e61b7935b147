package main

import (
	"encoding/json"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/shimmeringbee/panel/config"
	"github.com/shimmeringbee/panel/equipment"
	"github.com/shimmeringbee/panel/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testServices(t *testing.T) Services {
	registry, err := equipment.NewRegistry(nil)
	require.NoError(t, err)

	bus := state.NewEventBus()

	engine := state.NewEngine(state.Reconciler{Registry: registry, GatewayStatusTopic: state.DefaultGatewayStatusTopic}, &state.MockTransport{}, bus, logwrap.New(discard.Discard()))
	engine.Start()
	t.Cleanup(engine.Stop)

	return Services{
		Controller: engine,
		EventBus:   bus,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	}
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func Test_constructHTTPRouter(t *testing.T) {
	l := logwrap.New(discard.Discard())

	t.Run("mounts the v1 api under /api/v1", func(t *testing.T) {
		r := constructHTTPRouter(config.HTTPInterfaceConfig{EnabledAPIs: []string{"v1"}}, testServices(t), l)

		rr := serve(r, "/api/v1/gateway")
		require.Equal(t, http.StatusOK, rr.Code)

		status := map[string]bool{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
		assert.False(t, status["GatewayOnline"])
		assert.False(t, status["TransportConnected"])
	})

	t.Run("mounts metrics only when enabled", func(t *testing.T) {
		s := testServices(t)

		withMetrics := constructHTTPRouter(config.HTTPInterfaceConfig{EnabledAPIs: []string{"metrics"}}, s, l)
		rr := serve(withMetrics, "/metrics")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "metrics", rr.Body.String())

		withoutMetrics := constructHTTPRouter(config.HTTPInterfaceConfig{EnabledAPIs: []string{"v1"}}, s, l)
		assert.Equal(t, http.StatusNotFound, serve(withoutMetrics, "/metrics").Code)
	})

	t.Run("does not mount the v1 api unless enabled", func(t *testing.T) {
		r := constructHTTPRouter(config.HTTPInterfaceConfig{EnabledAPIs: []string{"metrics"}}, testServices(t), l)
		assert.Equal(t, http.StatusNotFound, serve(r, "/api/v1/gateway").Code)
	})

	t.Run("mounts pprof when enabled", func(t *testing.T) {
		r := constructHTTPRouter(config.HTTPInterfaceConfig{EnabledAPIs: []string{"pprof"}}, testServices(t), l)
		assert.Equal(t, http.StatusOK, serve(r, "/debug/pprof/").Code)
	})
}

func Test_startInterfaces(t *testing.T) {
	t.Run("starts and shuts down an http interface", func(t *testing.T) {
		cfgs := []config.InterfaceConfig{
			{Name: "http", Type: "http", Config: &config.HTTPInterfaceConfig{Port: 0, EnabledAPIs: []string{"v1"}}},
		}

		started, err := startInterfaces(cfgs, testServices(t), logwrap.New(discard.Discard()))
		require.NoError(t, err)
		require.Len(t, started, 1)

		assert.Equal(t, "http", started[0].Name)
		assert.NoError(t, started[0].Shutdown())
	})

	t.Run("errors on an unknown interface type", func(t *testing.T) {
		cfgs := []config.InterfaceConfig{{Name: "odd", Type: "odd", Config: struct{}{}}}

		_, err := startInterfaces(cfgs, testServices(t), logwrap.New(discard.Discard()))
		assert.Error(t, err)
	})
}
