package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/panel/state"
	"net/http"
	"sync"
	"time"
)

const Namespace = "panel"

const EventBufferSize = 64

type DropCounter interface {
	Dropped() uint64
}

// Collector mirrors engine notifications into Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	transportConnected prometheus.Gauge
	gatewayOnline      prometheus.Gauge
	reachable          *prometheus.GaugeVec
	powerOn            *prometheus.GaugeVec
	commands           *prometheus.CounterVec
	transportErrors    prometheus.Counter

	host         hostGauges
	hostInterval time.Duration
	hostSampler  HostSampler

	logger logwrap.Logger

	subscriber state.EventSubscriber
	ch         chan any
	stop       chan struct{}
	wg         sync.WaitGroup
}

func NewCollector(subscriber state.EventSubscriber, drops DropCounter, l logwrap.Logger) *Collector {
	c := &Collector{
		logger:   l,
		registry: prometheus.NewRegistry(),
		transportConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "transport_connected", Help: "1 while the broker connection is up.",
		}),
		gatewayOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "gateway_online", Help: "1 while the gateway reports online.",
		}),
		reachable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "equipment_reachable", Help: "1 once equipment has reported status.",
		}, []string{"equipment"}),
		powerOn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "equipment_power_on", Help: "1 while equipment is recorded as ON.",
		}, []string{"equipment"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "commands_total", Help: "Power commands by outcome.",
		}, []string{"equipment", "result"}),
		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "transport_errors_total", Help: "Transport level failures.",
		}),
		subscriber: subscriber,
	}

	c.registry.MustRegister(c.transportConnected, c.gatewayOnline, c.reachable, c.powerOn, c.commands, c.transportErrors)

	if drops != nil {
		c.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: Namespace, Name: "event_bus_dropped_total", Help: "Notifications dropped by slow subscribers.",
		}, func() float64 {
			return float64(drops.Dropped())
		}))
	}

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Seed sets gauges from a snapshot so series exist before the first notification.
func (c *Collector) Seed(snap state.Snapshot) {
	c.transportConnected.Set(boolToFloat(snap.TransportConnected))
	c.gatewayOnline.Set(boolToFloat(snap.GatewayOnline))

	for _, e := range snap.Equipment {
		c.observeEquipment(e)
	}
}

func (c *Collector) Start() {
	c.ch = make(chan any, EventBufferSize)
	c.stop = make(chan struct{})

	c.subscriber.Subscribe(c.ch)

	c.wg.Add(1)
	go c.handleEvents()

	if c.hostSampler != nil {
		c.wg.Add(1)
		go c.handleHost()
	}
}

func (c *Collector) Stop() {
	if c.stop == nil {
		return
	}

	c.subscriber.Unsubscribe(c.ch)
	close(c.stop)
	c.wg.Wait()
}

func (c *Collector) handleEvents() {
	defer c.wg.Done()

	for {
		select {
		case event := <-c.ch:
			c.Observe(event)
		case <-c.stop:
			return
		}
	}
}

func (c *Collector) Observe(e any) {
	switch event := e.(type) {
	case state.TransportConnected:
		c.transportConnected.Set(1)
	case state.TransportDisconnected:
		c.transportConnected.Set(0)
	case state.TransportErrored:
		c.transportErrors.Inc()
	case state.GatewayStatusUpdate:
		c.gatewayOnline.Set(boolToFloat(event.Online))
	case state.EquipmentUpdate:
		c.observeEquipment(event.Equipment)
	case state.CommandPublished:
		c.commands.WithLabelValues(event.Identifier, "published").Inc()
	case state.CommandRejected:
		c.commands.WithLabelValues(event.Identifier, "rejected").Inc()
	}
}

func (c *Collector) observeEquipment(e state.EquipmentState) {
	c.reachable.WithLabelValues(e.Identifier).Set(boolToFloat(e.Reachable))
	c.powerOn.WithLabelValues(e.Identifier).Set(boolToFloat(bool(e.Power)))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
