package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/Financial-Times/go-logger"
	"github.com/avast/retry-go/v4"
	"github.com/oracle/coherence-go-client/v2/coherence"
)

// namedCache is the subset of a Coherence named map the probe needs.
type namedCache interface {
	Clear(ctx context.Context) error
	PutAll(ctx context.Context, entries map[int]string) error
	Size(ctx context.Context) (int, error)
}

type clusterService interface {
	getCache(name string) (namedCache, error)
	getView(name string) (namedCache, error)
	suspendService(ctx context.Context, serviceName string) error
	resumeService(ctx context.Context, serviceName string) error
	getServiceStatusHA(ctx context.Context, serviceName string) (string, error)
	isServiceConfigured(ctx context.Context, serviceName string) bool
	getEdition(ctx context.Context) (string, error)
	getVersion(ctx context.Context) (string, error)
	isConnected() bool
}

// clusterContext is the process-wide handle to the cluster. It is created once
// at startup and handed to everything that needs it.
type clusterContext struct {
	*managementClient
	session   *coherence.Session
	connected atomic.Bool
}

func newClusterContext(ctx context.Context, config appConfig) (*clusterContext, error) {
	session, err := openSession(ctx, config)
	if err != nil {
		return nil, err
	}

	c := &clusterContext{
		managementClient: newManagementClient(config.managementURL, config.managementNodeID),
		session:          session,
	}
	c.connected.Store(true)
	session.AddSessionLifecycleListener(c.sessionListener())

	return c, nil
}

func (c *clusterContext) sessionListener() coherence.SessionLifecycleListener {
	return coherence.NewSessionLifecycleListener().
		OnConnected(func(_ coherence.SessionLifecycleEvent) {
			c.connected.Store(true)
		}).
		OnReconnected(func(_ coherence.SessionLifecycleEvent) {
			log.Info("Session to the cluster reconnected")
			c.connected.Store(true)
		}).
		OnDisconnected(func(_ coherence.SessionLifecycleEvent) {
			log.Warn("Session to the cluster disconnected")
			c.connected.Store(false)
		}).
		OnClosed(func(_ coherence.SessionLifecycleEvent) {
			c.connected.Store(false)
		})
}

func openSession(ctx context.Context, config appConfig) (*coherence.Session, error) {
	options := []func(*coherence.SessionOptions){
		coherence.WithAddress(config.coherenceAddress),
		coherence.WithRequestTimeout(config.requestTimeout),
	}
	// without plain text the client takes its TLS material from the COHERENCE_TLS_* variables
	if !config.coherenceTLS {
		options = append(options, coherence.WithPlainText())
	}

	session, err := retry.DoWithData(
		func() (*coherence.Session, error) {
			return coherence.NewSession(ctx, options...)
		},
		retry.Context(ctx),
		retry.Attempts(uint(config.connectAttempts)),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.WithError(err).Warnf("Cannot open session to %s, attempt %d", config.coherenceAddress, attempt+1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot open session to %s: %w", config.coherenceAddress, err)
	}

	log.Infof("Connected to cluster through %s", config.coherenceAddress)
	return session, nil
}

func (c *clusterContext) getCache(name string) (namedCache, error) {
	cache, err := coherence.GetNamedCache[int, string](c.session, name)
	if err != nil {
		return nil, fmt.Errorf("cannot get cache %s: %w", name, err)
	}

	return cache, nil
}

func (c *clusterContext) getView(name string) (namedCache, error) {
	view, err := coherence.GetNamedMap[int, string](c.session, name)
	if err != nil {
		return nil, fmt.Errorf("cannot get view %s: %w", name, err)
	}

	return view, nil
}

func (c *clusterContext) isConnected() bool {
	return c.connected.Load()
}

func (c *clusterContext) close() {
	c.session.Close()
}
