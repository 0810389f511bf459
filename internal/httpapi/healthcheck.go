package httpapi

import (
	"net/http"

	"canbridge/internal/dispatch"
	"canbridge/internal/utils"
)

type healthchecker struct {
	d *dispatch.Dispatcher
}

// handleHealthz reports ok once the dispatch loop has ticked at least once.
func (h *healthchecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s := h.d.Stats()
	if s.Ticks == 0 {
		utils.WriteError(w, r, http.StatusServiceUnavailable, "dispatch loop has not started")
		return
	}
	utils.WriteJSON(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"ticks":          s.Ticks,
		"last_tick_us":   s.LastTickDuration.Microseconds(),
		"simulation":     h.d.Simulation(),
		"frames_handled": s.FramesHandled,
	})
}

func registerHealthcheck(mux *http.ServeMux, d *dispatch.Dispatcher) {
	h := &healthchecker{d: d}
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}
