package httpapi

import (
	"net/http"

	"canbridge/internal/availability"
	"canbridge/internal/dispatch"
	"canbridge/internal/sensors"
	"canbridge/internal/utils"
)

type SensorsResponse struct {
	Simulation   bool                          `json:"simulation"`
	Availability map[string]availability.Entry `json:"availability"`
	Records      sensors.Snapshot              `json:"records"`
}

type StatsResponse struct {
	Ticks            uint64            `json:"ticks"`
	FramesSeen       uint64            `json:"frames_seen"`
	FramesHandled    uint64            `json:"frames_handled"`
	FramesRejected   uint64            `json:"frames_rejected"`
	PartialDecodes   uint64            `json:"partial_decodes"`
	CapHits          uint64            `json:"cap_hits"`
	MaxFramesPerTick int               `json:"max_frames_per_tick"`
	LastTickUS       int64             `json:"last_tick_us"`
	Routes           map[string]uint64 `json:"routes"`
}

type simulationRequest struct {
	Enabled *bool `json:"enabled"`
}

type sensorsHandler struct {
	d *dispatch.Dispatcher
}

// handleSensors returns availability and every record without clearing the
// fresh flags, so polling does not starve the telemetry publisher.
func (h *sensorsHandler) handleSensors(w http.ResponseWriter, r *http.Request) {
	snap := h.d.Tracker().Snapshot()
	resp := SensorsResponse{
		Simulation:   h.d.Simulation(),
		Availability: make(map[string]availability.Entry, len(snap)),
		Records:      h.d.Store().Peek(),
	}
	for i, e := range snap {
		resp.Availability[availability.Sensor(i).String()] = e
	}
	utils.WriteJSON(w, r, http.StatusOK, resp)
}

func (h *sensorsHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	s := h.d.Stats()
	resp := StatsResponse{
		Ticks:            s.Ticks,
		FramesSeen:       s.FramesSeen,
		FramesHandled:    s.FramesHandled,
		FramesRejected:   s.FramesRejected,
		PartialDecodes:   s.PartialDecodes,
		CapHits:          s.CapHits,
		MaxFramesPerTick: h.d.MaxFramesPerTick(),
		LastTickUS:       s.LastTickDuration.Microseconds(),
		Routes:           make(map[string]uint64, dispatch.NumRoutes),
	}
	for r := dispatch.RouteNone + 1; r < dispatch.NumRoutes; r++ {
		resp.Routes[r.String()] = s.RouteFrames[r]
	}
	utils.WriteJSON(w, r, http.StatusOK, resp)
}

func (h *sensorsHandler) handleSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := utils.DecodeJSON(w, r, 1<<10, &req); err != nil {
		utils.LoggerFrom(r.Context()).Debug("simulation request rejected", "error", err)
		utils.WriteError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Enabled == nil {
		utils.WriteError(w, r, http.StatusBadRequest, "missing 'enabled'")
		return
	}
	h.d.SetSimulation(*req.Enabled)
	utils.WriteJSON(w, r, http.StatusOK, map[string]bool{"simulation": h.d.Simulation()})
}

func registerSensors(mux *http.ServeMux, d *dispatch.Dispatcher) {
	h := &sensorsHandler{d: d}
	mux.HandleFunc("GET /api/v1/sensors", h.handleSensors)
	mux.HandleFunc("GET /api/v1/stats", h.handleStats)
	mux.HandleFunc("PUT /api/v1/simulation", h.handleSimulation)
}
