package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	log "github.com/Financial-Times/go-logger"
)

type balancedResult struct {
	ok       bool
	notReady bool
	service  string
	services []string
}

func (r balancedResult) body() string {
	switch {
	case r.notReady:
		return managementNotReadyBody
	case !r.ok:
		return fmt.Sprintf("Service %s is still %s.\nFull list is: [%s]", r.service, endangered, strings.Join(r.services, ", "))
	default:
		return okBody
	}
}

type balancedController struct {
	cluster clusterService
	metrics *probeMetrics
}

// servicesToCheck builds the set of services whose StatusHA has to be safe. The
// returned slice is a fresh copy, sorted by name.
func (c *balancedController) servicesToCheck(ctx context.Context) ([]string, error) {
	edition, err := c.cluster.getEdition(ctx)
	if err != nil {
		return nil, err
	}

	services := append([]string{}, baseServices...)
	if !isCommunityEdition(edition) {
		if c.cluster.isServiceConfigured(ctx, federatedService) {
			services = append(services, federatedService)
		}
		services = append(services, commercialServices...)
	}

	sort.Strings(services)
	return services, nil
}

// checkBalanced stops at the first ENDANGERED service.
func (c *balancedController) checkBalanced(ctx context.Context) (balancedResult, error) {
	services, err := c.servicesToCheck(ctx)
	if errors.Is(err, errManagementNotReady) {
		return balancedResult{notReady: true}, nil
	}
	if err != nil {
		return balancedResult{}, err
	}

	log.Infof("Checking for the following balanced services: %v", services)

	for _, serviceName := range services {
		statusHA, err := c.cluster.getServiceStatusHA(ctx, serviceName)
		if errors.Is(err, errManagementNotReady) {
			return balancedResult{notReady: true, services: services}, nil
		}
		if err != nil {
			return balancedResult{}, err
		}

		isEndangered := statusHA == endangered
		c.metrics.recordStatusHA(serviceName, isEndangered)
		if isEndangered {
			return balancedResult{service: serviceName, services: services}, nil
		}
	}

	log.Info("All services balanced")
	return balancedResult{ok: true, services: services}, nil
}

func isCommunityEdition(edition string) bool {
	return strings.EqualFold(edition, communityEdition) || strings.Contains(edition, communityEditionName)
}
