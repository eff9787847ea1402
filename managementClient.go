package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/Financial-Times/go-logger"
)

var (
	errManagementNotReady = errors.New("management proxy not ready")
	errServiceNotFound    = errors.New("service not found")
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// managementClient talks to Coherence Management over REST, which plays the
// role of the MBean server proxy of a cluster member.
type managementClient struct {
	baseURL    string
	nodeID     string
	httpClient httpClient
}

type serviceMemberResponse struct {
	StatusHA string `json:"statusHA"`
}

type memberResponse struct {
	ProductEdition string `json:"productEdition"`
}

type clusterResponse struct {
	Version string `json:"version"`
}

func newManagementClient(baseURL string, nodeID string) *managementClient {
	return &managementClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		nodeID:  nodeID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				DialContext: (&net.Dialer{
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

func (m *managementClient) getServiceStatusHA(ctx context.Context, serviceName string) (string, error) {
	var member serviceMemberResponse
	path := fmt.Sprintf("/services/%s/members/%s?links=&fields=statusHA", url.PathEscape(serviceName), url.PathEscape(m.nodeID))
	err := m.getJSON(ctx, path, &member)
	if errors.Is(err, errServiceNotFound) {
		log.Debugf("Service %s is not running on node %s", serviceName, m.nodeID)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot read StatusHA for service %s: %w", serviceName, err)
	}

	return member.StatusHA, nil
}

func (m *managementClient) isServiceConfigured(ctx context.Context, serviceName string) bool {
	var service map[string]interface{}
	err := m.getJSON(ctx, "/services/"+url.PathEscape(serviceName)+"?links=", &service)
	if err != nil {
		log.WithError(err).Debugf("Service %s is not configured", serviceName)
		return false
	}

	return true
}

func (m *managementClient) getEdition(ctx context.Context) (string, error) {
	var member memberResponse
	if err := m.getJSON(ctx, "/members/"+url.PathEscape(m.nodeID)+"?links=", &member); err != nil {
		return "", fmt.Errorf("cannot read product edition: %w", err)
	}

	return member.ProductEdition, nil
}

func (m *managementClient) getVersion(ctx context.Context) (string, error) {
	var cluster clusterResponse
	if err := m.getJSON(ctx, "?links=", &cluster); err != nil {
		return "", fmt.Errorf("cannot read cluster version: %w", err)
	}

	return cluster.Version, nil
}

func (m *managementClient) suspendService(ctx context.Context, serviceName string) error {
	return m.invokeServiceOperation(ctx, serviceName, "suspend")
}

func (m *managementClient) resumeService(ctx context.Context, serviceName string) error {
	return m.invokeServiceOperation(ctx, serviceName, "resume")
}

func (m *managementClient) invokeServiceOperation(ctx context.Context, serviceName string, operation string) error {
	path := fmt.Sprintf("/services/%s/%s", url.PathEscape(serviceName), operation)
	resp, err := m.do(ctx, http.MethodPost, path)
	if err != nil {
		return fmt.Errorf("cannot %s service %s: %w", operation, serviceName, err)
	}
	defer closeBody(resp)

	return nil
}

func (m *managementClient) getJSON(ctx context.Context, path string, target interface{}) error {
	resp, err := m.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading management response: %w", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("error parsing management response: %w", err)
	}

	return nil
}

// do returns the response only for 2xx statuses; the caller closes its body.
func (m *managementClient) do(ctx context.Context, method string, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error constructing management request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errManagementNotReady, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		closeBody(resp)
		return nil, fmt.Errorf("%w: %s", errServiceNotFound, path)
	case resp.StatusCode >= http.StatusInternalServerError:
		closeBody(resp)
		return nil, fmt.Errorf("%w: management endpoint returned status %d", errManagementNotReady, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		closeBody(resp)
		return nil, fmt.Errorf("management endpoint returned non-2xx status (%d)", resp.StatusCode)
	}

	return resp, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.WithError(err).Error("Cannot close response body reader.")
	}
}
