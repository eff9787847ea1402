package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	managementPath          = "/management/coherence/cluster"
	clusterResponseBody     = `{"clusterName":"cluster1","clusterSize":3,"version":"22.06.10","running":true}`
	memberResponseBody      = `{"nodeId":"1","productEdition":"CE","roleName":"CoherenceServer"}`
	serviceMemberBody       = `{"statusHA":"NODE-SAFE"}`
	endangeredMemberBody    = `{"statusHA":"ENDANGERED"}`
	federatedServiceBody    = `{"name":"FederatedService","type":"FederatedCache"}`
	invalidJSONResponseBody = `{"statusHA":`
)

type recordedRequest struct {
	method string
	path   string
	query  string
}

func newManagementServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*httptest.Server, *[]recordedRequest) {
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery})
		if route, ok := routes[r.Method+" "+r.URL.Path]; ok {
			route(w)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func respondWith(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGetVersion(t *testing.T) {
	server, requests := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath: respondWith(http.StatusOK, clusterResponseBody),
	})
	client := newManagementClient(server.URL+managementPath+"/", "1")

	version, err := client.getVersion(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, "22.06.10", version)
	assert.Equal(t, "links=", (*requests)[0].query)
}

func TestGetEdition(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath + "/members/1": respondWith(http.StatusOK, memberResponseBody),
	})
	client := newManagementClient(server.URL+managementPath, "1")

	edition, err := client.getEdition(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, "CE", edition)
}

func TestGetServiceStatusHA(t *testing.T) {
	server, requests := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath + "/services/PartitionedCache/members/2":  respondWith(http.StatusOK, serviceMemberBody),
		"GET " + managementPath + "/services/PartitionedCache2/members/2": respondWith(http.StatusOK, endangeredMemberBody),
	})
	client := newManagementClient(server.URL+managementPath, "2")

	status, err := client.getServiceStatusHA(context.TODO(), "PartitionedCache")
	require.NoError(t, err)
	assert.Equal(t, "NODE-SAFE", status)
	assert.Equal(t, "links=&fields=statusHA", (*requests)[0].query)

	status, err = client.getServiceStatusHA(context.TODO(), "PartitionedCache2")
	require.NoError(t, err)
	assert.Equal(t, endangered, status)
}

func TestGetServiceStatusHAForMissingService(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){})
	client := newManagementClient(server.URL+managementPath, "1")

	status, err := client.getServiceStatusHA(context.TODO(), "CanaryService")
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestGetServiceStatusHAInvalidJSON(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath + "/services/PartitionedCache/members/1": respondWith(http.StatusOK, invalidJSONResponseBody),
	})
	client := newManagementClient(server.URL+managementPath, "1")

	_, err := client.getServiceStatusHA(context.TODO(), "PartitionedCache")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errManagementNotReady)
}

func TestManagementServerErrorIsNotReady(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath + "/members/1": respondWith(http.StatusServiceUnavailable, ""),
	})
	client := newManagementClient(server.URL+managementPath, "1")

	_, err := client.getEdition(context.TODO())
	assert.ErrorIs(t, err, errManagementNotReady)
}

func TestManagementUnreachableIsNotReady(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	client := newManagementClient(url+managementPath, "1")

	_, err := client.getServiceStatusHA(context.TODO(), "PartitionedCache")
	assert.ErrorIs(t, err, errManagementNotReady)
}

func TestIsServiceConfigured(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath + "/services/FederatedService": respondWith(http.StatusOK, federatedServiceBody),
	})
	client := newManagementClient(server.URL+managementPath, "1")

	assert.True(t, client.isServiceConfigured(context.TODO(), "FederatedService"))
	assert.False(t, client.isServiceConfigured(context.TODO(), "OtherService"))
}

func TestSuspendAndResumeService(t *testing.T) {
	server, requests := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"POST " + managementPath + "/services/PartitionedCache/suspend": respondWith(http.StatusOK, "{}"),
		"POST " + managementPath + "/services/PartitionedCache/resume":  respondWith(http.StatusOK, "{}"),
	})
	client := newManagementClient(server.URL+managementPath, "1")

	require.NoError(t, client.suspendService(context.TODO(), "PartitionedCache"))
	require.NoError(t, client.resumeService(context.TODO(), "PartitionedCache"))

	require.Len(t, *requests, 2)
	assert.Equal(t, http.MethodPost, (*requests)[0].method)
	assert.Equal(t, managementPath+"/services/PartitionedCache/suspend", (*requests)[0].path)
	assert.Equal(t, managementPath+"/services/PartitionedCache/resume", (*requests)[1].path)
}

func TestSuspendUnknownService(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){})
	client := newManagementClient(server.URL+managementPath, "1")

	err := client.suspendService(context.TODO(), "Unknown")
	assert.ErrorIs(t, err, errServiceNotFound)
}

func TestManagementClientError(t *testing.T) {
	server, _ := newManagementServer(t, map[string]func(w http.ResponseWriter){
		"GET " + managementPath: respondWith(http.StatusUnauthorized, ""),
	})
	client := newManagementClient(server.URL+managementPath, "1")

	_, err := client.getVersion(context.TODO())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errManagementNotReady)
}
