// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/learnify/internal/core"
)

const checkTimeout = 5 * time.Second

type Handler struct {
	db       *core.Database
	redis    *core.Redis
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(db *core.Database, redis *core.Redis) *Handler {
	return &Handler{db: db, redis: redis}
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(down bool) {
	h.shutdown.Store(down)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/livez", h.Livez)
	r.Get("/readyz", h.Readyz)
}

type serviceStatus struct {
	Database string `json:"database"`
	Server   string `json:"server"`
}

type healthResponse struct {
	Status   string        `json:"status"`
	Services serviceStatus `json:"services"`
}

// Health probes the database and redis in parallel and reports the
// aggregate. A failing dependency yields 503 so upstream monitors see
// the instance as unhealthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var dbErr, redisErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		dbErr = h.db.Ping(ctx)
	}()
	go func() {
		defer wg.Done()
		redisErr = h.redis.Ping(ctx)
	}()
	wg.Wait()

	resp := healthResponse{
		Status: "healthy",
		Services: serviceStatus{
			Database: "healthy",
			Server:   "healthy",
		},
	}

	status := http.StatusOK
	if dbErr != nil || redisErr != nil {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	if dbErr != nil {
		resp.Services.Database = "unhealthy"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck // best-effort write
}

// Livez reports only process liveness, never dependency health, so an
// unhealthy database does not get the pod killed.
func (h *Handler) Livez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck // best-effort write
}

// Readyz gates traffic: not ready until startup completes, not ready
// again once shutdown begins.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() || !h.ready.Load() {
		http.Error(
			w,
			"service unavailable",
			http.StatusServiceUnavailable,
		)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready")) //nolint:errcheck // best-effort write
}
