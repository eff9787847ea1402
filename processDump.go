package main

import (
	"encoding/json"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

func environmentProperties() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, _ := strings.Cut(entry, "=")
		env[key] = value
	}
	return env
}

// processProperties is the Go counterpart of a JVM's system properties: runtime
// facts about the process plus the effective probe configuration.
func processProperties(config appConfig) map[string]string {
	props := map[string]string{
		"go.version":                runtime.Version(),
		"os.name":                   runtime.GOOS,
		"os.arch":                   runtime.GOARCH,
		"num.cpu":                   strconv.Itoa(runtime.NumCPU()),
		"process.pid":               strconv.Itoa(os.Getpid()),
		"probe.port":                strconv.Itoa(config.port),
		"probe.pathPrefix":          config.pathPrefix,
		"probe.coherenceAddress":    config.coherenceAddress,
		"probe.coherenceTLS":        strconv.FormatBool(config.coherenceTLS),
		"probe.managementURL":       config.managementURL,
		"probe.managementNodeID":    config.managementNodeID,
		"probe.requestTimeout":      config.requestTimeout.String(),
		"probe.connectAttempts":     strconv.Itoa(config.connectAttempts),
		"probe.executorPresent":     strconv.FormatBool(config.capabilities.executor),
		"probe.healthPresent":       strconv.FormatBool(config.capabilities.healthCheck),
		"probe.coherenceWebPresent": strconv.FormatBool(config.capabilities.coherenceWeb),
		"probe.mbeanAppID":          config.mbeanAppID,
		"probe.statusPollInterval":  config.statusPollInterval.String(),
		"probe.logLevel":            config.logLevel,
	}

	if dir, err := os.Getwd(); err == nil {
		props["user.dir"] = dir
	}
	if host, err := os.Hostname(); err == nil {
		props["host.name"] = host
	}

	return props
}

// formatSingleKeyObjects renders the map as a JSON array of one-key objects,
// separated by ",\n", in key order.
func formatSingleKeyObjects(values map[string]string) (string, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, key := range keys {
		k, err := json.Marshal(key)
		if err != nil {
			return "", err
		}
		v, err := json.Marshal(values[key])
		if err != nil {
			return "", err
		}
		entries = append(entries, "{"+string(k)+":"+string(v)+"}")
	}

	return "[" + strings.Join(entries, ",\n") + "]", nil
}
