package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	fthealth "github.com/Financial-Times/go-fthealth/v1_1"
	log "github.com/Financial-Times/go-logger"
)

const (
	systemCode             = "coherence-test-server"
	panicGuide             = "https://oracle.github.io/coherence-cli/"
	defaultSeverity        = uint8(2)
	managementCheckTimeout = 5 * time.Second
)

type healthService struct {
	cluster clusterService
}

func (hs *healthService) healthCheck() fthealth.HealthCheck {
	return fthealth.HealthCheck{
		SystemCode:  systemCode,
		Name:        "Coherence test server",
		Description: "Drives and probes a Coherence cluster member for CLI integration tests",
		Checks:      []fthealth.Check{hs.sessionCheck(), hs.managementCheck()},
	}
}

func (hs *healthService) sessionCheck() fthealth.Check {
	return fthealth.Check{
		BusinessImpact:   "Cache population endpoints will fail.",
		Name:             "Cluster gRPC session",
		PanicGuide:       panicGuide,
		Severity:         defaultSeverity,
		TechnicalSummary: "The gRPC session to the cluster proxy is not connected.",
		Checker: func() (string, error) {
			if !hs.cluster.isConnected() {
				return "", errors.New("session is disconnected")
			}
			return "session is connected", nil
		},
	}
}

func (hs *healthService) managementCheck() fthealth.Check {
	return fthealth.Check{
		BusinessImpact:   "Balanced, suspend, resume, edition and version endpoints will fail.",
		Name:             "Management over REST",
		PanicGuide:       panicGuide,
		Severity:         defaultSeverity,
		TechnicalSummary: "The management endpoint of the cluster member cannot be reached.",
		Checker: func() (string, error) {
			ctx, cancel := context.WithTimeout(context.Background(), managementCheckTimeout)
			defer cancel()

			version, err := hs.cluster.getVersion(ctx)
			if err != nil {
				return "", err
			}
			return "cluster version " + version, nil
		},
	}
}

func (hs *healthService) handleHealth(w http.ResponseWriter, _ *http.Request) {
	healthResult := fthealth.RunCheck(hs.healthCheck())

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if err := enc.Encode(healthResult); err != nil {
		log.WithError(err).Error("Couldn't encode health results to ResponseWriter.")
	}
}

func (hs *healthService) handleGoodToGo(w http.ResponseWriter, _ *http.Request) {
	healthResult := fthealth.RunCheck(hs.healthCheck())
	if !healthResult.Ok {
		for _, check := range healthResult.Checks {
			if !check.Ok {
				writeText(w, http.StatusServiceUnavailable, check.Name+" is failing")
				return
			}
		}
	}

	writeText(w, http.StatusOK, okBody)
}
