// Package http serves the observation endpoints: liveness, a condensed
// status view, the raw snapshot, and Prometheus metrics. The server only
// reads; every mutation goes through the command bridge.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

// SnapshotSource yields the latest polled snapshot, nil before the first.
type SnapshotSource interface {
	Snapshot() *schema.Snapshot
}

// Status is the condensed state view served at /status.
type Status struct {
	Tick     uint64      `json:"tick"`
	Mode     domain.Mode `json:"mode"`
	Map      string      `json:"map,omitempty"`
	Tile     domain.Tile `json:"tile,omitempty"`
	HP       int         `json:"hp,omitempty"`
	MaxHP    int         `json:"max_hp,omitempty"`
	Hostiles int         `json:"hostiles,omitempty"`
	Dead     bool        `json:"dead,omitempty"`
}

// BuildStatus condenses a snapshot. It tolerates absent groups.
func BuildStatus(snap *schema.Snapshot) Status {
	st := Status{
		Tick: snap.Tick,
		Mode: snap.Mode(),
		Dead: snap.PlayerDead,
	}
	if snap.Map != nil {
		st.Map = snap.Map.Name
	}
	if snap.Player != nil {
		st.Tile = snap.Player.Tile
	}
	if snap.Character != nil {
		st.HP = snap.Character.DerivedStats.CurrentHP
		st.MaxHP = snap.Character.DerivedStats.MaxHP
	}
	if snap.Combat != nil {
		st.Hostiles = len(snap.Combat.AliveHostiles())
	}
	return st
}

// NewHandler builds the observation router.
func NewHandler(source SnapshotSource, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if source.Snapshot() == nil {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		snap := source.Snapshot()
		if snap == nil {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, BuildStatus(snap))
	})

	r.Get("/snapshot", func(w http.ResponseWriter, req *http.Request) {
		snap := source.Snapshot()
		if snap == nil {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, snap)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
