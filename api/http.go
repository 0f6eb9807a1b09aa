package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"influencemap/engine"
	"influencemap/typedef"
)

// Handler returns the router serving the REST routes and the websocket hub.
func (api *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/regions", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, api.regions())
	})
	r.Get("/territories", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, api.territories())
	})
	r.Get("/territories/{name}", api.getTerritory)
	r.Get("/influence", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, api.influence())
	})
	r.Get("/query", api.getQuery)
	r.Get("/status", api.getStatus)
	r.Get("/ws", api.handleWebSocket)

	return r
}

// getTerritory handles GET /territories/{name}
func (api *API) getTerritory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var (
		view  typedef.TerritoryView
		found bool
	)
	api.d.Do(func(m *engine.Map) {
		view, found = m.Territory(name)
	})
	if !found {
		respondError(w, http.StatusNotFound, "territory not found: "+name)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// getQuery handles GET /query?x=&y= with screen coordinates.
func (api *API) getQuery(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	respondJSON(w, http.StatusOK, api.queryAt(x, y))
}

// getStatus handles GET /status
func (api *API) getStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusData{
		Clients: api.clientCount(),
		Uptime:  time.Since(api.started).Round(time.Second).String(),
	}
	api.d.Do(func(m *engine.Map) {
		status.Territories = m.TerritoryCount()
		status.MapWidth = m.Width()
		status.MapHeight = m.Height()
	})

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			status.RSSBytes = info.RSS
		}
		if cpu, err := p.CPUPercent(); err == nil {
			status.CPUPercent = cpu
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.SystemMemory = vm.UsedPercent
	}

	respondJSON(w, http.StatusOK, status)
}

func (api *API) regions() []typedef.RegionView {
	out := []typedef.RegionView{}
	api.d.Do(func(m *engine.Map) {
		if rs := m.Regions(); rs != nil {
			out = rs
		}
	})
	return out
}

func (api *API) territories() []typedef.TerritoryView {
	out := []typedef.TerritoryView{}
	api.d.Do(func(m *engine.Map) {
		if ts := m.Territories(); ts != nil {
			out = ts
		}
	})
	return out
}

func (api *API) influence() InfluenceData {
	data := InfluenceData{Territories: map[string]float64{}}
	api.d.Do(func(m *engine.Map) {
		data.Global = m.GlobalInfluence()
		for _, t := range m.Territories() {
			data.Territories[t.Name] = t.Influence
		}
	})
	return data
}

func (api *API) queryAt(x, y float64) QueryResult {
	var res QueryResult
	api.d.Do(func(m *engine.Map) {
		if region, ok := m.QueryAt(x, y); ok {
			v := region.View()
			res = QueryResult{Found: true, Region: &v}
		}
	})
	return res
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
