package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	log "github.com/Financial-Times/go-logger"
	"github.com/gorilla/mux"
	cli "github.com/jawher/mow.cli"
	"github.com/prometheus/client_golang/prometheus"
)

const appName = "coherence-test-server"

func main() {
	app := cli.App(appName, "REST server that drives and probes a Coherence cluster member for CLI integration tests.")

	port := app.Int(cli.IntOpt{
		Name:   "port",
		Value:  8080,
		Desc:   "Port to listen on",
		EnvVar: "TEST_REST_PORT",
	})

	pathPrefix := app.String(cli.StringOpt{
		Name:   "pathPrefix",
		Value:  "",
		Desc:   "Path prefix for all endpoints",
		EnvVar: "PATH_PREFIX",
	})

	coherenceAddress := app.String(cli.StringOpt{
		Name:   "coherence-address",
		Value:  "localhost:1408",
		Desc:   "Address of the Coherence gRPC proxy",
		EnvVar: "COHERENCE_SERVER_ADDRESS",
	})

	coherenceTLS := app.Bool(cli.BoolOpt{
		Name:   "coherence-tls",
		Value:  false,
		Desc:   "Use TLS for the gRPC session, configured through the COHERENCE_TLS_* variables",
		EnvVar: "COHERENCE_TLS_ENABLED",
	})

	managementURL := app.String(cli.StringOpt{
		Name:   "management-url",
		Value:  "http://localhost:30000/management/coherence/cluster",
		Desc:   "Base URL of Coherence Management over REST",
		EnvVar: "MANAGEMENT_URL",
	})

	managementNodeID := app.String(cli.StringOpt{
		Name:   "management-node-id",
		Value:  "1",
		Desc:   "Node id whose service and member MBeans are queried",
		EnvVar: "MANAGEMENT_NODE_ID",
	})

	requestTimeout := app.String(cli.StringOpt{
		Name:   "request-timeout",
		Value:  "30s",
		Desc:   "Timeout of a single gRPC cache request",
		EnvVar: "REQUEST_TIMEOUT",
	})

	connectAttempts := app.Int(cli.IntOpt{
		Name:   "connect-attempts",
		Value:  10,
		Desc:   "Number of attempts to open the gRPC session at startup",
		EnvVar: "CONNECT_ATTEMPTS",
	})

	executorPresent := app.Bool(cli.BoolOpt{
		Name:   "executor-present",
		Value:  false,
		Desc:   "Whether the executor module is deployed with the member",
		EnvVar: "EXECUTOR_PRESENT",
	})

	healthPresent := app.Bool(cli.BoolOpt{
		Name:   "health-present",
		Value:  false,
		Desc:   "Whether the health check module is deployed with the member",
		EnvVar: "HEALTH_CHECK_PRESENT",
	})

	coherenceWebPresent := app.Bool(cli.BoolOpt{
		Name:   "coherence-web-present",
		Value:  false,
		Desc:   "Whether Coherence*Web session manager MBeans can be registered",
		EnvVar: "COHERENCE_WEB_PRESENT",
	})

	mbeanAppID := app.String(cli.StringOpt{
		Name:   "mbean-app-id",
		Value:  "application1",
		Desc:   "Application id of the registered session manager MBean",
		EnvVar: "MBEAN_APP_ID",
	})

	statusPollInterval := app.String(cli.StringOpt{
		Name:   "status-poll-interval",
		Value:  "60s",
		Desc:   "How often StatusHA metrics are refreshed",
		EnvVar: "STATUS_POLL_INTERVAL",
	})

	logLevel := app.String(cli.StringOpt{
		Name:   "log-level",
		Value:  "info",
		Desc:   "Logging level (debug, info, warn, error)",
		EnvVar: "LOG_LEVEL",
	})

	app.Action = func() {
		log.InitLogger(appName, *logLevel)

		config, err := buildConfig(rawConfig{
			port:                *port,
			pathPrefix:          *pathPrefix,
			coherenceAddress:    *coherenceAddress,
			coherenceTLS:        *coherenceTLS,
			managementURL:       *managementURL,
			managementNodeID:    *managementNodeID,
			requestTimeout:      *requestTimeout,
			connectAttempts:     *connectAttempts,
			executorPresent:     *executorPresent,
			healthPresent:       *healthPresent,
			coherenceWebPresent: *coherenceWebPresent,
			mbeanAppID:          *mbeanAppID,
			statusPollInterval:  *statusPollInterval,
			logLevel:            *logLevel,
		})
		if err != nil {
			log.WithError(err).Fatal("Invalid configuration")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cluster, err := newClusterContext(ctx, config)
		if err != nil {
			log.WithError(err).Fatal("Cannot connect to the cluster")
		}
		defer cluster.close()

		metrics := newProbeMetrics(prometheus.NewRegistry())
		handler := newHTTPHandler(cluster, metrics, config)
		health := &healthService{cluster: cluster}

		feeder := newPrometheusFeeder(config.coherenceAddress, config.statusPollInterval, handler.balanced)
		go feeder.feed(ctx)

		listen(handler, health, metrics, config)
	}

	err := app.Run(os.Args)
	if err != nil {
		panic(fmt.Sprintf("Cannot run the app. Error was: %v", err))
	}
}

func newRouter(httpHandler *httpHandler, health *healthService, metrics *probeMetrics, pathPrefix string) *mux.Router {
	r := mux.NewRouter()
	s := r.PathPrefix(pathPrefix).Subrouter()
	s.HandleFunc("/ready", httpHandler.handleReady)
	s.HandleFunc("/env", httpHandler.handleEnv)
	s.HandleFunc("/props", httpHandler.handleProps)
	s.HandleFunc("/suspend", httpHandler.handleSuspend)
	s.HandleFunc("/resume", httpHandler.handleResume)
	s.HandleFunc("/populate", httpHandler.populateHandler(populateTarget))
	s.HandleFunc("/populateFlash", httpHandler.populateHandler(populateFlashTarget))
	s.HandleFunc("/populateRam", httpHandler.populateHandler(populateRAMTarget))
	s.HandleFunc("/populateFederation", httpHandler.populateHandler(populateFederationTarget))
	s.HandleFunc("/populateView", httpHandler.populateHandler(populateViewTarget))
	s.HandleFunc("/edition", httpHandler.handleEdition)
	s.HandleFunc("/version", httpHandler.handleVersion)
	s.HandleFunc("/registerMBeans", httpHandler.handleRegisterMBeans)
	s.HandleFunc("/executorPresent", httpHandler.handleExecutorPresent)
	s.HandleFunc("/healthPresent", httpHandler.handleHealthPresent)
	s.HandleFunc("/balanced", httpHandler.handleBalanced)
	s.HandleFunc("/__health", health.handleHealth)
	s.HandleFunc("/__gtg", health.handleGoodToGo)
	s.Handle("/metrics", metrics.handler())

	return r
}

func listen(httpHandler *httpHandler, health *healthService, metrics *probeMetrics, config appConfig) {
	r := newRouter(httpHandler, health, metrics, config.pathPrefix)

	log.Infof("REST server is UP! http://localhost:%d%s", config.port, config.pathPrefix)
	err := http.ListenAndServe(fmt.Sprintf(":%d", config.port), r)
	if err != nil {
		panic(fmt.Sprintf("Cannot set up HTTP listener. Error was: %v", err))
	}
}
