package main

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// rawConfig holds the option values exactly as mow.cli parsed them.
type rawConfig struct {
	port                int
	pathPrefix          string
	coherenceAddress    string
	coherenceTLS        bool
	managementURL       string
	managementNodeID    string
	requestTimeout      string
	connectAttempts     int
	executorPresent     bool
	healthPresent       bool
	coherenceWebPresent bool
	mbeanAppID          string
	statusPollInterval  string
	logLevel            string
}

func buildConfig(raw rawConfig) (appConfig, error) {
	if raw.port <= 0 || raw.port > 65535 {
		return appConfig{}, fmt.Errorf("invalid port %d", raw.port)
	}

	if _, err := url.ParseRequestURI(raw.managementURL); err != nil {
		return appConfig{}, fmt.Errorf("invalid management url %s: %w", raw.managementURL, err)
	}

	if raw.connectAttempts < 1 {
		return appConfig{}, errors.New("connect attempts must be at least 1")
	}

	requestTimeout, err := time.ParseDuration(raw.requestTimeout)
	if err != nil {
		return appConfig{}, fmt.Errorf("invalid request timeout: %w", err)
	}

	statusPollInterval, err := time.ParseDuration(raw.statusPollInterval)
	if err != nil {
		return appConfig{}, fmt.Errorf("invalid status poll interval: %w", err)
	}
	if statusPollInterval <= 0 {
		return appConfig{}, errors.New("status poll interval must be positive")
	}

	return appConfig{
		port:             raw.port,
		pathPrefix:       raw.pathPrefix,
		coherenceAddress: raw.coherenceAddress,
		coherenceTLS:     raw.coherenceTLS,
		managementURL:    raw.managementURL,
		managementNodeID: raw.managementNodeID,
		requestTimeout:   requestTimeout,
		connectAttempts:  raw.connectAttempts,
		capabilities: capabilities{
			executor:     raw.executorPresent,
			healthCheck:  raw.healthPresent,
			coherenceWeb: raw.coherenceWebPresent,
		},
		mbeanAppID:         raw.mbeanAppID,
		statusPollInterval: statusPollInterval,
		logLevel:           raw.logLevel,
	}, nil
}
