package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthResponse is the body of GET /api/v1/health.
type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Authenticated bool   `json:"authenticated"`
}

// moduleSummary is one entry of GET /api/v1/modules.
type moduleSummary struct {
	UDID       string `json:"udid"`
	Name       string `json:"name,omitempty"`
	LastUpdate string `json:"last_update,omitempty"`
}

// temperatureRequest is the body of the set-temperature endpoint.
type temperatureRequest struct {
	Temperature float64 `json:"temperature"`
}

// stateRequest is the body of the set-state endpoint.
type stateRequest struct {
	On bool `json:"on"`
}

// commandResponse acknowledges an accepted command.
type commandResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.version,
		Authenticated: s.client.IsAuthenticated(),
	})
}

// handleListModules lists the configured modules with their last refresh
// time. When no modules are configured it falls back to the account's
// module listing from the cloud.
func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	if len(s.modules) == 0 {
		modules, err := s.client.ListModules(r.Context())
		if err != nil {
			writeClientError(w, err)
			return
		}

		out := make([]moduleSummary, 0, len(modules))
		for _, m := range modules {
			out = append(out, s.summarise(m.UDID, m.Name))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	out := make([]moduleSummary, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, s.summarise(m.UDID, m.Name))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) summarise(udid, name string) moduleSummary {
	summary := moduleSummary{UDID: udid, Name: name}
	if last, ok := s.client.ModuleLastUpdate(udid); ok {
		summary.LastUpdate = last.UTC().Format(time.RFC3339)
	}
	return summary
}

// handleGetModule returns a fresh snapshot of a module's zones and tiles.
func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	state, err := s.client.RefreshModule(r.Context(), udid)
	if err != nil {
		writeClientError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.client.ClearModuleCache(chi.URLParam(r, "udid"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTemperature(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")
	zoneID, err := strconv.Atoi(chi.URLParam(r, "zoneID"))
	if err != nil {
		writeBadRequest(w, "invalid zone id")
		return
	}

	var req temperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Temperature <= 0 {
		writeBadRequest(w, "body must be {\"temperature\": <degrees>}")
		return
	}

	if err := s.client.SetZoneTemperature(r.Context(), udid, zoneID, req.Temperature); err != nil {
		writeClientError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{Status: "accepted"})
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")
	zoneID, err := strconv.Atoi(chi.URLParam(r, "zoneID"))
	if err != nil {
		writeBadRequest(w, "invalid zone id")
		return
	}

	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "body must be {\"on\": <bool>}")
		return
	}

	if err := s.client.SetZoneOnOff(r.Context(), udid, zoneID, req.On); err != nil {
		writeClientError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{Status: "accepted"})
}
