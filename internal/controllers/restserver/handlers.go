package restserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/types"
)

// staleAfter is how old the latest reading may be before /healthz
// reports the collector as degraded.
const staleAfter = 5 * time.Minute

// Handlers holds the HTTP handlers and the latest-reading cache
type Handlers struct {
	mu     sync.RWMutex
	latest *types.Reading
}

func NewHandlers() *Handlers {
	return &Handlers{}
}

// SetLatest records the most recently distributed reading
func (h *Handlers) SetLatest(r types.Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &r
}

// GetLatest serves the most recent reading as JSON.  Absent sensors
// appear as JSON null; a station that has never reported yields 404.
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		http.Error(w, "no readings received yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		log.Errorf("error encoding latest reading: %v", err)
	}
}

type healthResponse struct {
	Status      string     `json:"status"`
	LastReading *time.Time `json:"last_reading,omitempty"`
}

// GetHealth reports collector liveness.  Degraded means the station has
// not produced a reading recently, which includes the timed-out case.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	resp := healthResponse{Status: "ok"}
	code := http.StatusOK

	if latest == nil {
		resp.Status = "waiting"
	} else {
		ts := latest.Timestamp
		resp.LastReading = &ts
		if time.Since(ts) > staleAfter || latest.Empty() {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("error encoding health response: %v", err)
	}
}
