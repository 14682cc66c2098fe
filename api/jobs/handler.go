// Package jobs accepts disbursement batches over HTTP and runs them in the
// background, one at a time.
package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/disburse/core/disburse"
	"github.com/kilianp07/disburse/core/logger"
)

// Runner executes one batch.
type Runner interface {
	Run(ctx context.Context, req disburse.Request) (disburse.Report, error)
}

// State is the outcome of the latest submission.
type State struct {
	Running    bool             `json:"running"`
	Submitted  time.Time        `json:"submitted_at"`
	Report     *disburse.Report `json:"report,omitempty"`
	Error      string           `json:"error,omitempty"`
	Objectives int              `json:"cases"`
}

// Handler serves POST /api/jobs and GET /api/jobs/last.
type Handler struct {
	ctx    context.Context
	runner Runner
	token  string
	log    logger.Logger

	mu   sync.Mutex
	last *State
	wg   sync.WaitGroup
}

// NewHandler returns a Handler whose batches run under ctx.
func NewHandler(ctx context.Context, runner Runner, token string, log logger.Logger) *Handler {
	return &Handler{ctx: ctx, runner: runner, token: token, log: logger.OrNop(log)}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/api/jobs", h.authorized(http.HandlerFunc(h.submit)))
	mux.Handle("/api/jobs/last", h.authorized(http.HandlerFunc(h.lastState)))
}

// Wait blocks until the batch in flight, if any, returns.
func (h *Handler) Wait() { h.wg.Wait() }

func (h *Handler) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req disburse.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "decode request: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.last != nil && h.last.Running {
		h.mu.Unlock()
		http.Error(w, "a batch is already running", http.StatusConflict)
		return
	}
	st := &State{Running: true, Submitted: time.Now().UTC(), Objectives: len(req.Objectives)}
	h.last = st
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		rep, err := h.runner.Run(h.ctx, req)
		h.mu.Lock()
		defer h.mu.Unlock()
		st.Running = false
		if err != nil {
			h.log.Errorf("batch submitted at %s: %v", st.Submitted.Format(time.RFC3339), err)
			st.Error = err.Error()
			return
		}
		st.Report = &rep
	}()

	writeJSON(w, http.StatusAccepted, h.snapshot())
}

func (h *Handler) lastState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := h.snapshot()
	if st == nil {
		http.Error(w, "no batch submitted", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) snapshot() *State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return nil
	}
	cp := *h.last
	return &cp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
