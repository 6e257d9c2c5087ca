// Package health serves liveness and readiness endpoints backed by
// registered dependency probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker probes one dependency and reports an error when it is unhealthy.
type Checker func(ctx context.Context) error

// Status is the reported health of a component or of the service overall.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const probeTimeout = 5 * time.Second

// CheckResult is the outcome of a single probe.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Response is the body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type probe struct {
	name     string
	check    Checker
	critical bool
}

// Handler aggregates dependency probes behind HTTP endpoints.
type Handler struct {
	mu     sync.RWMutex
	probes []probe
}

func NewHandler() *Handler {
	return &Handler{}
}

// RegisterCritical adds a probe whose failure makes readiness return 503.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(probe{name: name, check: checker, critical: true})
}

// RegisterNonCritical adds a probe whose failure degrades the reported
// status but keeps readiness at 200.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(probe{name: name, check: checker})
}

func (h *Handler) register(p probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, p)
}

// LivenessHandler reports up whenever the process can serve the request.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered probe. A failed critical probe
// yields 503; failed non-critical probes only mark the status degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		h.mu.RLock()
		probes := make([]probe, len(h.probes))
		copy(probes, h.probes)
		h.mu.RUnlock()

		overall := StatusUp
		checks := make(map[string]CheckResult, len(probes))
		for _, p := range probes {
			err := p.check(ctx)
			if err == nil {
				checks[p.name] = CheckResult{Status: StatusUp}
				continue
			}
			checks[p.name] = CheckResult{Status: StatusDown, Error: err.Error()}
			switch {
			case p.critical:
				overall = StatusDown
			case overall == StatusUp:
				overall = StatusDegraded
			}
		}

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, code, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}

func writeResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
