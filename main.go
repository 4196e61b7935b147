package main

import (
	"context"
	lw "github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"github.com/shimmeringbee/logwrap/impl/nest"
	"github.com/shimmeringbee/panel/metrics"
	"github.com/shimmeringbee/panel/state"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	ctx := context.Background()
	l := lw.New(golog.Wrap(log.New(os.Stderr, "", log.LstdFlags)))

	l.LogInfo(ctx, "Shimmering Bee: Panel - Starting...")

	directories := enumerateDirectories(ctx, l, os.Args[1:])

	l.LogInfo(ctx, "Directory enumeration complete.", lw.Datum("directories", directories))

	l, err := configureLogging(filepath.Join(directories.Config, "logging"), directories.Log, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to configure logging.", lw.Err(err))
	}

	reconciler, err := loadReconciler(directories.Config)
	if err != nil {
		l.LogFatal(ctx, "Failed to load equipment configuration.", lw.Err(err))
	}

	l.LogInfo(ctx, "Loaded equipment configuration.", lw.Datum("equipmentCount", reconciler.Registry.Len()), lw.Datum("gatewayStatusTopic", reconciler.GatewayStatusTopic))

	transportCfg, err := loadTransportConfiguration(directories.Config)
	if err != nil {
		l.LogFatal(ctx, "Failed to load transport configuration.", lw.Err(err))
	}

	interfaceCfgs, err := loadInterfaceConfigurations(filepath.Join(directories.Config, "interfaces"))
	if err != nil {
		l.LogFatal(ctx, "Failed to load interface configurations.", lw.Err(err))
	}

	l.LogInfo(ctx, "Loaded interface configurations.", lw.Datum("configCount", len(interfaceCfgs)))

	transportLogger := lw.New(nest.Wrap(l))
	transportLogger.AddOptionsToLogger(lw.Source("transport"))

	transport, err := constructTransport(transportCfg, transportLogger)
	if err != nil {
		l.LogFatal(ctx, "Failed to construct transport.", lw.Err(err))
	}

	eventBus := state.NewEventBus()

	metricsLogger := lw.New(nest.Wrap(l))
	metricsLogger.AddOptionsToLogger(lw.Source("metrics"))

	l.LogInfo(ctx, "Starting metrics collector.")
	collector := metrics.NewCollector(eventBus, eventBus, metricsLogger)
	collector.Seed(reconciler.Snapshot(reconciler.Initial()))
	collector.SampleHostEvery(metrics.DefaultHostSampleInterval, metrics.SampleHost)
	collector.Start()

	engineLogger := lw.New(nest.Wrap(l))
	engineLogger.AddOptionsToLogger(lw.Source("engine"))

	l.LogInfo(ctx, "Starting engine.")
	engine := state.NewEngine(reconciler, transport, eventBus, engineLogger)
	engine.Start()

	l.LogInfo(ctx, "Starting interfaces.")
	startedInterfaces, err := startInterfaces(interfaceCfgs, Services{
		Controller: engine,
		EventBus:   eventBus,
		Metrics:    collector.Handler(),
	}, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to start interfaces.", lw.Err(err))
	}

	l.LogInfo(ctx, "Starting transport.")
	transport.Start(engine)

	l.LogInfo(ctx, "Panel ready.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	s := <-signalCh
	l.LogInfo(ctx, "Signal received, shutting down.", lw.Datum("signal", s.String()))

	for _, intf := range startedInterfaces {
		l.LogInfo(ctx, "Shutting down interface.", lw.Datum("interface", intf.Name))

		if err := intf.Shutdown(); err != nil {
			l.LogError(ctx, "Failed to shutdown interface.", lw.Err(err), lw.Datum("interface", intf.Name))
		}
	}

	l.LogInfo(ctx, "Shutting down transport.")
	transport.Stop()

	l.LogInfo(ctx, "Shutting down engine.")
	engine.Stop()

	l.LogInfo(ctx, "Shutting down metrics collector.")
	collector.Stop()

	l.LogInfo(ctx, "Shut down complete.")
}
