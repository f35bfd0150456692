package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
	"github.com/LeventeLantos/campaign-builder/internal/scheduler"
	"github.com/LeventeLantos/campaign-builder/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Composer interface {
	Configured() bool
	ComposeSMS(ctx context.Context, brief client.ComposeBrief) (string, error)
}

// Deps are the services the HTTP surface delegates to.
type Deps struct {
	Store         Pinger
	Scheduler     *scheduler.Scheduler
	Dispatcher    *service.Dispatcher
	Reconciler    *service.Reconciler
	Conversations *service.Conversations
	Numbers       *service.NumberSelector
	Campaigns     *service.Orchestrator
	Composer      Composer
}

type Handler struct {
	store         Pinger
	sched         *scheduler.Scheduler
	dispatcher    *service.Dispatcher
	reconciler    *service.Reconciler
	conversations *service.Conversations
	numbers       *service.NumberSelector
	campaigns     *service.Orchestrator
	composer      Composer
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		store:         d.Store,
		sched:         d.Scheduler,
		dispatcher:    d.Dispatcher,
		reconciler:    d.Reconciler,
		conversations: d.Conversations,
		numbers:       d.Numbers,
		campaigns:     d.Campaigns,
		composer:      d.Composer,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.Status())
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, h.sched.Status())
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, h.sched.Status())
}

func statusFor(err error) int {
	var de *service.DispatchError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &de):
		return http.StatusBadGateway
	default:
		// Configuration errors land here too.
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed json: %v", service.ErrInvalidRequest, err)
	}
	return nil
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
