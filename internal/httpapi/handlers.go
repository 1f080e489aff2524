package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flowcache/flowcache/internal/cacheengine"
)

// putRequest is the JSON body of POST /put.
type putRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	TTL   *int   `json:"ttl,omitempty"` // seconds; nil means "use the engine's default TTL"
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Debug("rejected malformed put body", zap.Error(err))
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	var err error
	if req.TTL != nil {
		err = s.engine.PutWithTTL(req.Key, req.Value, time.Duration(*req.TTL)*time.Second)
	} else {
		err = s.engine.Put(req.Key, req.Value)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	// Get has no error return — a shut-down engine just reports misses — so
	// the 503 mapping for terminal state is applied here instead.
	if s.engine.IsShutdown() {
		writeEngineError(w, cacheengine.ErrShutdown)
		return
	}

	value, ok := s.engine.Get(key)
	if !ok {
		http.Error(w, "key not found or expired", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, cacheengine.Pair{Key: key, Value: value})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	if err := s.engine.Delete(key); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.engine.Clear(); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// statsResponse renders Snapshot with hit_rate rounded to 3 decimal places.
type statsResponse struct {
	Hits            uint64  `json:"hits"`
	Misses          uint64  `json:"misses"`
	HitRate         float64 `json:"hit_rate"`
	TotalRequests   uint64  `json:"total_requests"`
	CurrentSize     int     `json:"current_size"`
	Evictions       uint64  `json:"evictions"`
	ExpiredRemovals uint64  `json:"expired_removals"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.engine.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		Hits:            snap.Hits,
		Misses:          snap.Misses,
		HitRate:         roundTo(snap.HitRate, 3),
		TotalRequests:   snap.TotalRequests,
		CurrentSize:     snap.CurrentSize,
		Evictions:       snap.Evictions,
		ExpiredRemovals: snap.ExpiredRemovals,
	})
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.All())
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cacheengine.ErrInvalidKey), errors.Is(err, cacheengine.ErrInvalidTTL):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, cacheengine.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, cacheengine.ErrShutdown):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
