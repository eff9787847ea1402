package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
)

// mbean is a fixed set of named attributes that can be published for monitoring.
type mbean interface {
	objectType() string
	numericAttributes() map[string]float64
	stringAttributes() map[string]string
}

// sessionManagerMBean carries the constant attribute values of a mock
// Coherence*Web HttpSessionManager. Unset string and date attributes are empty.
type sessionManagerMBean struct {
	AverageReapDuration          float64
	AverageReapedSessions        float64
	AverageReapQueueWaitDuration float64
	LastReapDuration             float64
	LastReapQueueWaitDuration    float64
	LocalAttributeCount          float64
	LocalSessionCount            float64
	MaxReapDuration              float64
	MaxReapQueueWaitDuration     float64
	MaxReapedSessions            float64
	OverflowAverageSize          float64
	OverflowMaxSize              float64
	OverflowThreshold            float64
	OverflowUpdates              float64
	ReapedSessions               float64
	ReapedSessionsTotal          float64
	SessionAverageLifetime       float64
	SessionAverageSize           float64
	SessionDebugLogging          bool
	SessionIDLength              float64
	SessionMaxSize               float64
	SessionMinSize               float64
	SessionStickyCount           float64
	SessionTimeout               float64
	SessionUpdates               float64
	CollectionClassName          string
	FactoryClassName             string
	LastReapCycle                string
	LocalAttributeCacheName      string
	LocalSessionCacheName        string
	NextReapCycle                string
	OverflowCacheName            string
	ServletContextCacheName      string
	ServletContextName           string
	SessionCacheName             string
}

const (
	mockAverageReapDuration = 30
	mockSessionCacheName    = "testcache"
)

func newMockSessionManagerMBean() sessionManagerMBean {
	return sessionManagerMBean{
		AverageReapDuration: mockAverageReapDuration,
		SessionCacheName:    mockSessionCacheName,
	}
}

func (m sessionManagerMBean) objectType() string {
	return "webapp_session_manager"
}

func (m sessionManagerMBean) numericAttributes() map[string]float64 {
	return map[string]float64{
		"AverageReapDuration":          m.AverageReapDuration,
		"AverageReapedSessions":        m.AverageReapedSessions,
		"AverageReapQueueWaitDuration": m.AverageReapQueueWaitDuration,
		"LastReapDuration":             m.LastReapDuration,
		"LastReapQueueWaitDuration":    m.LastReapQueueWaitDuration,
		"LocalAttributeCount":          m.LocalAttributeCount,
		"LocalSessionCount":            m.LocalSessionCount,
		"MaxReapDuration":              m.MaxReapDuration,
		"MaxReapQueueWaitDuration":     m.MaxReapQueueWaitDuration,
		"MaxReapedSessions":            m.MaxReapedSessions,
		"OverflowAverageSize":          m.OverflowAverageSize,
		"OverflowMaxSize":              m.OverflowMaxSize,
		"OverflowThreshold":            m.OverflowThreshold,
		"OverflowUpdates":              m.OverflowUpdates,
		"ReapedSessions":               m.ReapedSessions,
		"ReapedSessionsTotal":          m.ReapedSessionsTotal,
		"SessionAverageLifetime":       m.SessionAverageLifetime,
		"SessionAverageSize":           m.SessionAverageSize,
		"SessionDebugLogging":          boolToFloat64(m.SessionDebugLogging),
		"SessionIdLength":              m.SessionIDLength,
		"SessionMaxSize":               m.SessionMaxSize,
		"SessionMinSize":               m.SessionMinSize,
		"SessionStickyCount":           m.SessionStickyCount,
		"SessionTimeout":               m.SessionTimeout,
		"SessionUpdates":               m.SessionUpdates,
	}
}

func (m sessionManagerMBean) stringAttributes() map[string]string {
	return map[string]string{
		"CollectionClassName":     m.CollectionClassName,
		"FactoryClassName":        m.FactoryClassName,
		"LastReapCycle":           m.LastReapCycle,
		"LocalAttributeCacheName": m.LocalAttributeCacheName,
		"LocalSessionCacheName":   m.LocalSessionCacheName,
		"NextReapCycle":           m.NextReapCycle,
		"OverflowCacheName":       m.OverflowCacheName,
		"ServletContextCacheName": m.ServletContextCacheName,
		"ServletContextName":      m.ServletContextName,
		"SessionCacheName":        m.SessionCacheName,
	}
}

// registerMBean publishes every numeric attribute as a gauge and the string
// attributes as the labels of a single info gauge, all tagged with the appId.
// Registering the same application twice is not an error and keeps the values
// first registered, which holds as long as the attributes are constant.
// On failure the gauges already registered by this call are unregistered.
func registerMBean(registry prometheus.Registerer, appID string, bean mbean) error {
	constLabels := prometheus.Labels{"appId": appID}
	var registered []prometheus.Collector

	for name, value := range bean.numericAttributes() {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "coherence",
			Subsystem:   bean.objectType(),
			Name:        toSnakeCase(name),
			Help:        fmt.Sprintf("%s attribute %s", bean.objectType(), name),
			ConstLabels: constLabels,
		})
		gauge.Set(value)
		added, err := register(registry, gauge)
		if err != nil {
			unregisterAll(registry, registered)
			return fmt.Errorf("cannot register attribute %s: %w", name, err)
		}
		if added {
			registered = append(registered, gauge)
		}
	}

	infoLabels := prometheus.Labels{"appId": appID}
	for name, value := range bean.stringAttributes() {
		infoLabels[toSnakeCase(name)] = value
	}
	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "coherence",
		Subsystem:   bean.objectType(),
		Name:        "info",
		Help:        fmt.Sprintf("%s string attributes", bean.objectType()),
		ConstLabels: infoLabels,
	})
	info.Set(1)
	if _, err := register(registry, info); err != nil {
		unregisterAll(registry, registered)
		return fmt.Errorf("cannot register info: %w", err)
	}

	return nil
}

func unregisterAll(registry prometheus.Registerer, collectors []prometheus.Collector) {
	for _, c := range collectors {
		registry.Unregister(c)
	}
}

// register reports whether the collector was newly added. A collector that is
// already registered is not an error.
func register(registry prometheus.Registerer, collector prometheus.Collector) (bool, error) {
	err := registry.Register(collector)
	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return false, nil
	}
	return err == nil, err
}

func toSnakeCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
