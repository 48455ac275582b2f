// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/middleware"
)

type Handler struct {
	db      *core.Database
	redis   *core.Redis
	started time.Time
}

func NewHandler(db *core.Database, redis *core.Redis) *Handler {
	return &Handler{db: db, redis: redis, started: time.Now()}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)
		r.Get("/stats", h.Stats)
	})
}

type catalogCounts struct {
	Users              int `db:"users"               json:"users"`
	Courses            int `db:"courses"             json:"courses"`
	PublishedCourses   int `db:"published_courses"   json:"publishedCourses"`
	Enrollments        int `db:"enrollments"         json:"enrollments"`
	CompletedPurchases int `db:"completed_purchases" json:"completedPurchases"`
}

// Stats reports process, pool and catalog numbers for operators.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.countCatalog(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbStats := h.db.Stats()
	poolStats := h.redis.PoolStats()

	core.OK(w, map[string]any{
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"catalog":        counts,
		"database": map[string]any{
			"open_connections": dbStats.OpenConnections,
			"in_use":           dbStats.InUse,
			"idle":             dbStats.Idle,
			"wait_count":       dbStats.WaitCount,
		},
		"redis": map[string]any{
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"hits":        poolStats.Hits,
			"misses":      poolStats.Misses,
		},
		"runtime": map[string]any{
			"goroutines":     runtime.NumGoroutine(),
			"heap_alloc_mb":  mem.HeapAlloc / (1 << 20),
			"total_alloc_mb": mem.TotalAlloc / (1 << 20),
			"num_gc":         mem.NumGC,
		},
	})
}

func (h *Handler) countCatalog(ctx context.Context) (*catalogCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM courses) AS courses,
			(SELECT COUNT(*) FROM courses
				WHERE is_published) AS published_courses,
			(SELECT COUNT(*) FROM enrollments) AS enrollments,
			(SELECT COUNT(*) FROM purchases
				WHERE status = 'completed') AS completed_purchases`

	var counts catalogCounts
	if err := h.db.DB.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count catalog: %w", err)
	}

	return &counts, nil
}
