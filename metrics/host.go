package metrics

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shimmeringbee/logwrap"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"time"
)

const DefaultHostSampleInterval = 10 * time.Second

type HostStats struct {
	CPUPercent float64
	MemoryUsed uint64
}

type HostSampler func(context.Context) (HostStats, error)

// SampleHost reads CPU usage since the previous call and current memory use.
func SampleHost(ctx context.Context) (HostStats, error) {
	percent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return HostStats{}, err
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return HostStats{}, err
	}

	stats := HostStats{MemoryUsed: vm.Used}

	if len(percent) > 0 {
		stats.CPUPercent = percent[0]
	}

	return stats, nil
}

type hostGauges struct {
	cpu    prometheus.Gauge
	memory prometheus.Gauge
}

func newHostGauges() hostGauges {
	return hostGauges{
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "host_cpu_usage_percent", Help: "CPU usage percent (0-100).",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "host_memory_used_bytes", Help: "Memory used in bytes.",
		}),
	}
}

// SampleHostEvery enables host gauges, sampled from Start until Stop. Must be called before Start.
func (c *Collector) SampleHostEvery(interval time.Duration, sampler HostSampler) {
	c.host = newHostGauges()
	c.hostInterval = interval
	c.hostSampler = sampler

	c.registry.MustRegister(c.host.cpu, c.host.memory)
}

func (c *Collector) sampleHost(ctx context.Context) {
	stats, err := c.hostSampler(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.LogWarn(ctx, "Failed to sample host statistics.", logwrap.Err(err))
		}
		return
	}

	c.host.cpu.Set(stats.CPUPercent)
	c.host.memory.Set(float64(stats.MemoryUsed))
}

func (c *Collector) handleHost() {
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	c.sampleHost(ctx)

	ticker := time.NewTicker(c.hostInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sampleHost(ctx)
		case <-c.stop:
			return
		}
	}
}
