package app

import (
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"
)

// Handler serves GET /api/telemetry with the latest reading.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/telemetry", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		msg, ok := r.Latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(msg); err != nil {
			logger.Errorf("json encode error: %v", err)
		}
	})
	return mux
}
