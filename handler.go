package main

import (
	"net/http"
	"strconv"

	log "github.com/Financial-Times/go-logger"
	"github.com/prometheus/client_golang/prometheus"
)

type httpHandler struct {
	cluster      clusterService
	balanced     *balancedController
	populator    *populator
	capabilities capabilities
	registry     prometheus.Registerer
	mbeanAppID   string
	config       appConfig
}

func newHTTPHandler(cluster clusterService, metrics *probeMetrics, config appConfig) *httpHandler {
	return &httpHandler{
		cluster:      cluster,
		balanced:     &balancedController{cluster: cluster, metrics: metrics},
		populator:    &populator{cluster: cluster, metrics: metrics},
		capabilities: config.capabilities,
		registry:     metrics.registry,
		mbeanAppID:   config.mbeanAppID,
		config:       config,
	}
}

func (h *httpHandler) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, okBody)
}

func (h *httpHandler) handleEnv(w http.ResponseWriter, _ *http.Request) {
	h.writeSingleKeyObjects(w, environmentProperties())
}

func (h *httpHandler) handleProps(w http.ResponseWriter, _ *http.Request) {
	h.writeSingleKeyObjects(w, processProperties(h.config))
}

func (h *httpHandler) writeSingleKeyObjects(w http.ResponseWriter, values map[string]string) {
	body, err := formatSingleKeyObjects(values)
	if err != nil {
		log.WithError(err).Error("Cannot format properties")
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.WithError(err).Error("Cannot write response")
	}
}

func (h *httpHandler) handleSuspend(w http.ResponseWriter, r *http.Request) {
	if err := h.cluster.suspendService(r.Context(), suspendableService); err != nil {
		log.WithError(err).Errorf("Cannot suspend service %s", suspendableService)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Infof("Service %s suspended", suspendableService)
	writeText(w, http.StatusOK, okBody)
}

func (h *httpHandler) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := h.cluster.resumeService(r.Context(), suspendableService); err != nil {
		log.WithError(err).Errorf("Cannot resume service %s", suspendableService)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Infof("Service %s resumed", suspendableService)
	writeText(w, http.StatusOK, okBody)
}

func (h *httpHandler) populateHandler(target populationTarget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.populator.populate(r.Context(), target); err != nil {
			log.WithError(err).Errorf("Cannot populate caches %v", target.caches)
			writeText(w, http.StatusInternalServerError, err.Error())
			return
		}

		log.Infof("Populated caches %v with %d entries each", target.caches, target.count)
		writeText(w, http.StatusOK, okBody)
	}
}

func (h *httpHandler) handleEdition(w http.ResponseWriter, r *http.Request) {
	edition, err := h.cluster.getEdition(r.Context())
	if err != nil {
		log.WithError(err).Error("Cannot get product edition")
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeText(w, http.StatusOK, edition)
}

func (h *httpHandler) handleVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.cluster.getVersion(r.Context())
	if err != nil {
		log.WithError(err).Error("Cannot get cluster version")
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeText(w, http.StatusOK, version)
}

func (h *httpHandler) handleExecutorPresent(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, strconv.FormatBool(h.capabilities.executor))
}

func (h *httpHandler) handleHealthPresent(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, strconv.FormatBool(h.capabilities.healthCheck))
}

func (h *httpHandler) handleRegisterMBeans(w http.ResponseWriter, _ *http.Request) {
	if !h.capabilities.coherenceWeb {
		log.Warn("Coherence*Web is not present, cannot register session manager MBeans")
		writeText(w, http.StatusNotFound, errorBody)
		return
	}

	if err := registerMBean(h.registry, h.mbeanAppID, newMockSessionManagerMBean()); err != nil {
		log.WithError(err).Errorf("Cannot register session manager MBean for %s", h.mbeanAppID)
		writeText(w, http.StatusNotFound, errorBody)
		return
	}

	writeText(w, http.StatusOK, okBody)
}

func (h *httpHandler) handleBalanced(w http.ResponseWriter, r *http.Request) {
	result, err := h.balanced.checkBalanced(r.Context())
	if err != nil {
		log.WithError(err).Error("Cannot check whether services are balanced")
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeText(w, http.StatusOK, result.body())
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.WithError(err).Error("Cannot write response")
	}
}
