package main

import "time"

const (
	endangered             = "ENDANGERED"
	federatedService       = "FederatedService"
	suspendableService     = "PartitionedCache"
	communityEdition       = "CE"
	communityEditionName   = "Community Edition"
	managementNotReadyBody = "MBeanServerProxy not ready"
	okBody                 = "OK"
	errorBody              = "Error"
	populateFlushThreshold = 1000
)

var (
	baseServices       = []string{"PartitionedCache", "PartitionedCache2", "CanaryService"}
	commercialServices = []string{"PartitionedCacheFlash", "PartitionedCacheRAM"}
)

// populationTarget is a group of caches filled with the same number of entries.
type populationTarget struct {
	caches []string
	count  int
	view   bool
}

var (
	populateTarget           = populationTarget{caches: []string{"cache-1", "cache-2"}, count: 100}
	populateFlashTarget      = populationTarget{caches: []string{"flash-1", "flash-2"}, count: 1000}
	populateRAMTarget        = populationTarget{caches: []string{"ram-1", "ram-2"}, count: 1000}
	populateFederationTarget = populationTarget{caches: []string{"federated-1", "federated-2", "federated-3"}, count: 10000}
	populateViewTarget       = populationTarget{caches: []string{"view-cache-1", "view-cache-2"}, count: 100, view: true}
)

// capabilities declares which optional cluster modules are deployed alongside the member.
type capabilities struct {
	executor     bool
	healthCheck  bool
	coherenceWeb bool
}

type appConfig struct {
	port               int
	pathPrefix         string
	coherenceAddress   string
	coherenceTLS       bool
	managementURL      string
	managementNodeID   string
	requestTimeout     time.Duration
	connectAttempts    int
	capabilities       capabilities
	mbeanAppID         string
	statusPollInterval time.Duration
	logLevel           string
}
