package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/Financial-Times/go-logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type probeMetrics struct {
	registry          *prometheus.Registry
	serviceEndangered *prometheus.GaugeVec
	populatedEntries  *prometheus.CounterVec
	cacheSize         *prometheus.GaugeVec
}

func newProbeMetrics(registry *prometheus.Registry) *probeMetrics {
	m := &probeMetrics{
		registry:          registry,
		serviceEndangered: initServiceStatusMetrics(),
		populatedEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coherence",
				Subsystem: "probe",
				Name:      "populated_entries_total",
				Help:      "Number of entries written into a cache by the populate endpoints",
			},
			[]string{"cache"}),
		cacheSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "coherence",
				Subsystem: "probe",
				Name:      "cache_size",
				Help:      "Size of a cache as read right after it was populated",
			},
			[]string{"cache"}),
	}
	registry.MustRegister(m.serviceEndangered, m.populatedEntries, m.cacheSize)

	return m
}

func initServiceStatusMetrics() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "coherence",
			Subsystem: "probe",
			Name:      "service_endangered",
			Help:      "StatusHA of the service: 0 - safe; 1 - ENDANGERED",
		},
		[]string{"service"})
}

func (m *probeMetrics) recordStatusHA(serviceName string, isEndangered bool) {
	m.serviceEndangered.With(prometheus.Labels{"service": serviceName}).Set(boolToFloat64(isEndangered))
}

func (m *probeMetrics) recordPopulated(cacheName string, count int) {
	m.populatedEntries.With(prometheus.Labels{"cache": cacheName}).Add(float64(count))
}

func (m *probeMetrics) recordCacheSize(cacheName string, size int) {
	m.cacheSize.With(prometheus.Labels{"cache": cacheName}).Set(float64(size))
}

func (m *probeMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func ignitePilotLight(registry prometheus.Registerer, clusterAddress string) error {
	pilotLight := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "coherence",
			Subsystem: "probe",
			Name:      "pilotlight",
			Help:      "Pilot light for the probe monitoring cluster service health",
		},
		[]string{"cluster"})
	if err := registry.Register(pilotLight); err != nil {
		return err
	}
	pilotLight.With(prometheus.Labels{"cluster": clusterAddress}).Set(1)

	return nil
}

// prometheusFeeder periodically refreshes the StatusHA gauges, independently of /balanced calls.
type prometheusFeeder struct {
	clusterAddress string
	ticker         *time.Ticker
	controller     *balancedController
}

func newPrometheusFeeder(clusterAddress string, interval time.Duration, controller *balancedController) *prometheusFeeder {
	return &prometheusFeeder{
		clusterAddress: clusterAddress,
		ticker:         time.NewTicker(interval),
		controller:     controller,
	}
}

func (f *prometheusFeeder) feed(ctx context.Context) {
	if err := ignitePilotLight(f.controller.metrics.registry, f.clusterAddress); err != nil {
		log.WithError(err).Warn("Cannot register pilot light")
	}

	defer f.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.ticker.C:
			f.feedOnce(ctx)
		}
	}
}

func (f *prometheusFeeder) feedOnce(ctx context.Context) {
	services, err := f.controller.servicesToCheck(ctx)
	if err != nil {
		log.WithError(err).Warn("Cannot compute the services to check, skipping StatusHA metrics")
		return
	}

	for _, serviceName := range services {
		statusHA, err := f.controller.cluster.getServiceStatusHA(ctx, serviceName)
		if errors.Is(err, errManagementNotReady) {
			log.WithError(err).Warn("Management proxy not ready, skipping StatusHA metrics")
			return
		}
		if err != nil {
			log.WithError(err).Warnf("Cannot read StatusHA for service %s", serviceName)
			continue
		}
		f.controller.metrics.recordStatusHA(serviceName, statusHA == endangered)
	}
}

func boolToFloat64(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
