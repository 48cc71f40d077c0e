// Пакет handlers — служебные HTTP-обработчики Upload Console.
// health.go — health endpoints и метрики.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (upload-API доступен)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/goartstore/upload-console/internal/config"
)

// serviceName — имя сервиса в ответах health.
const serviceName = "upload-console"

// HealthSource — источник состояния зависимостей (DephealthService).
type HealthSource interface {
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	deps        HealthSource
	healthy     func(map[string]bool) bool
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// healthy решает по карте состояний, доступен ли upload-API.
// deps может быть nil: readiness тогда возвращает fail.
func NewHealthHandler(deps HealthSource, healthy func(map[string]bool) bool) *HealthHandler {
	return &HealthHandler{
		deps:        deps,
		healthy:     healthy,
		promHandler: promhttp.Handler(),
	}
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		UploadAPI healthCheckResult `json:"upload_api"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	switch {
	case h.deps == nil:
		resp.Checks.UploadAPI = healthCheckResult{Status: "fail", Message: "не инициализирован"}
	case h.healthy(h.deps.Health()):
		resp.Checks.UploadAPI = healthCheckResult{Status: "ok"}
	default:
		resp.Checks.UploadAPI = healthCheckResult{Status: "fail", Message: "upload-API недоступен"}
	}
	resp.Status = resp.Checks.UploadAPI.Status

	status := http.StatusOK
	if resp.Status == "fail" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
