// Package health exposes the voice service's liveness and readiness probes.
//
// /healthz answers 200 whenever the process can serve HTTP. /readyz runs the
// dependency probes registered at startup (the topic catalogue and the
// provider set in the default wiring) and answers 503 with per-probe detail
// when any of them fails.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// probeTimeout bounds one full readiness sweep.
const probeTimeout = 5 * time.Second

// Probe checks one dependency of the voice service. A nil return means the
// dependency can serve a voice turn right now. Probes must respect context
// cancellation.
type Probe func(ctx context.Context) error

// namedProbe ties a probe to the key it reports under.
type namedProbe struct {
	name  string
	probe Probe
}

// report is the JSON body of both endpoints.
type report struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// Handler serves /healthz and /readyz. Register every probe before mounting
// the handler; the probe list must not grow while requests are in flight.
type Handler struct {
	probes []namedProbe
}

// New creates a Handler with no probes. Chain [Handler.Add] calls to
// register the service's dependencies.
func New() *Handler {
	return &Handler{}
}

// Add registers a probe under the given name and returns h for chaining.
func (h *Handler) Add(name string, p Probe) *Handler {
	h.probes = append(h.probes, namedProbe{name: name, probe: p})
	return h
}

// Healthz answers liveness. A process that reaches this handler is alive,
// regardless of what its probes would say.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, report{Status: "ok"})
}

// Readyz answers readiness. Every probe runs on every request under one
// shared [probeTimeout] deadline, so the body lists all dependencies even
// when an early one fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	out := report{Status: "ok", Probes: make(map[string]string, len(h.probes))}
	code := http.StatusOK

	for _, np := range h.probes {
		if err := np.probe(ctx); err != nil {
			out.Probes[np.name] = "fail: " + err.Error()
			out.Status = "fail"
			code = http.StatusServiceUnavailable
			continue
		}
		out.Probes[np.name] = "ok"
	}

	respond(w, code, out)
}

// Register mounts both endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
