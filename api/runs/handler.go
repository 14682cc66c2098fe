package runs

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/disburse/core/disburse/logging"
)

// NewHandler returns an HTTP handler exposing the run log via GET /api/runs.
// Query parameters run_id, domain, status, start and end (RFC3339) filter
// the records. Requests must carry "Bearer <token>" when token is non-empty.
func NewHandler(store logging.RunStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		v := r.URL.Query()
		q := logging.RunQuery{
			RunID:  v.Get("run_id"),
			Domain: v.Get("domain"),
			Status: v.Get("status"),
		}
		var err error
		if q.Start, err = parseTime(v.Get("start")); err != nil {
			http.Error(w, "start: "+err.Error(), http.StatusBadRequest)
			return
		}
		if q.End, err = parseTime(v.Get("end")); err != nil {
			http.Error(w, "end: "+err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.RunRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
