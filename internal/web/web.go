package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/cache"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/config"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/export"
	appLog "github.com/Kejlo523/mzut-v2-pwa-sub000/internal/log"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/planapi"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/schedule"
)

// Server provides the HTTP API around the schedule engine. It owns the
// orchestration for one request: cache read, upstream fetch if needed,
// engine invocation, cache save.
type Server struct {
	cfg   *config.Config
	plan  *planapi.Client
	store cache.Store
	loc   *time.Location
	now   func() time.Time
	mux   *http.ServeMux
}

// NewServer constructs a new Server. now may be nil (time.Now).
func NewServer(cfg *config.Config, plan *planapi.Client, store cache.Store, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{
		cfg:   cfg,
		plan:  plan,
		store: store,
		loc:   resolveLocationOrLocal(cfg.Timezone),
		now:   now,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := s.requestLogMiddleware(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/schedule.ics", s.handleScheduleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestLogMiddleware tags every request with an ID and logs method, path
// and duration.
func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		appLog.Debug("http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="mzut", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// handleSchedule computes a schedule view.
//
// GET /api/schedule?mode=week&date=2024-03-14&search=&force=0
//   - mode:   day | week | month (default week)
//   - date:   anchor date YYYY-MM-DD (default today)
//   - search: teacher/room filter; when set, overrides the configured album
//   - force:  serve cached data regardless of age
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.buildSchedule(r)
	if err != nil {
		appLog.Error("api schedule failed", err, "query", r.URL.RawQuery)
		writeError(w, http.StatusBadGateway, "failed to retrieve schedule")
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// handleScheduleICS serves the same view as an iCalendar feed.
func (s *Server) handleScheduleICS(w http.ResponseWriter, r *http.Request) {
	sched, err := s.buildSchedule(r)
	if err != nil {
		appLog.Error("api schedule.ics failed", err, "query", r.URL.RawQuery)
		writeError(w, http.StatusBadGateway, "failed to retrieve schedule")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.ICS(sched)))
}

func (s *Server) buildSchedule(r *http.Request) (model.Schedule, error) {
	qp := r.URL.Query()
	q := schedule.Query{
		Mode:   schedule.ParseMode(qp.Get("mode")),
		Anchor: qp.Get("date"),
		Album:  s.cfg.Album,
		Search: qp.Get("search"),
	}
	return s.Compute(r.Context(), q, qp.Get("force") == "1")
}

// Compute runs one full schedule request: cache read, upstream fetch where
// needed, engine invocation. It is what the HTTP handlers, the cron warmer
// and the -once CLI path all share.
func (s *Server) Compute(ctx context.Context, q schedule.Query, force bool) (model.Schedule, error) {
	now := s.now()
	rng := schedule.Resolve(q.Mode, q.Anchor, now, s.loc)

	// No study selected and no search filter: an empty schedule for the
	// requested range is a valid, renderable result, not a failure.
	if q.ID() == "" {
		return schedule.Build(q, nil, nil, now, s.loc), nil
	}

	// Occurrences and session periods come from independent endpoints;
	// fetch both concurrently and await both before invoking the engine.
	var (
		wg      sync.WaitGroup
		raw     []model.RawOccurrence
		periods []model.SessionPeriod
		rawErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		raw, rawErr = s.loadOccurrences(ctx, q, rng, force)
	}()
	go func() {
		defer wg.Done()
		// Session periods are decorative; a failed fetch degrades to none.
		periods = s.loadSessionPeriods(ctx, force)
	}()
	wg.Wait()

	if rawErr != nil {
		return model.Schedule{}, rawErr
	}
	return schedule.Build(q, raw, periods, now, s.loc), nil
}

// loadOccurrences returns the raw records for the query's fetch window,
// preferring the cache. The cache key is composed from the fetch window and
// the query identity, so a day view and its containing week share one entry
// and day-to-day navigation is served without refetching.
func (s *Server) loadOccurrences(ctx context.Context, q schedule.Query, rng schedule.Range, force bool) ([]model.RawOccurrence, error) {
	key := "plan|" + rng.FetchStart.Format(schedule.DateLayout) +
		"|" + rng.FetchEnd.Format(schedule.DateLayout) +
		"|" + q.ID()

	var raw []model.RawOccurrence
	if payload, err := s.cacheRead(key, force); err == nil {
		if err := json.Unmarshal(payload, &raw); err == nil {
			return raw, nil
		}
		// Corrupted entry reads as a miss; fall through to a fetch.
		appLog.Warn("cache entry undecodable, refetching", "key", key)
	}

	raw, err := s.plan.FetchSchedule(ctx, q.Album, q.Search, rng.FetchStart, rng.FetchEnd)
	if err != nil {
		// Network trouble: a stale entry beats no schedule at all.
		if payload, ferr := s.store.LoadForce(key); ferr == nil {
			var stale []model.RawOccurrence
			if uerr := json.Unmarshal(payload, &stale); uerr == nil {
				appLog.Warn("plan fetch failed, serving stale cache", "key", key)
				return stale, nil
			}
		}
		return nil, err
	}

	if payload, merr := json.Marshal(raw); merr == nil {
		if serr := s.store.Save(key, cache.CategorySchedule, payload); serr != nil {
			appLog.Error("cache save failed", serr, "key", key)
		}
	}
	return raw, nil
}

func (s *Server) loadSessionPeriods(ctx context.Context, force bool) []model.SessionPeriod {
	const key = "sessions"

	var periods []model.SessionPeriod
	if payload, err := s.cacheRead(key, force); err == nil {
		if err := json.Unmarshal(payload, &periods); err == nil {
			return periods
		}
		appLog.Warn("cache entry undecodable, refetching", "key", key)
	}

	periods, err := s.plan.FetchSessionPeriods(ctx)
	if err != nil {
		appLog.Error("session periods fetch failed", err)
		return nil
	}

	if payload, merr := json.Marshal(periods); merr == nil {
		if serr := s.store.Save(key, cache.CategorySessions, payload); serr != nil {
			appLog.Error("cache save failed", serr, "key", key)
		}
	}
	return periods
}

// WarmCurrentWeek pre-fetches the current week's schedule and session
// periods so interactive requests are served from cache. A missing album is
// not an error; there is simply nothing to warm.
func (s *Server) WarmCurrentWeek(ctx context.Context) error {
	q := schedule.Query{Mode: schedule.ModeWeek, Album: s.cfg.Album}
	if q.ID() == "" {
		return nil
	}
	rng := schedule.Resolve(q.Mode, "", s.now(), s.loc)
	if _, err := s.loadOccurrences(ctx, q, rng, false); err != nil {
		return err
	}
	s.loadSessionPeriods(ctx, false)
	return nil
}

// cacheRead picks the read path: force ignores TTL, the default is
// freshness-checked.
func (s *Server) cacheRead(key string, force bool) ([]byte, error) {
	if force {
		return s.store.LoadForce(key)
	}
	return s.store.LoadFresh(key)
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// StartServer starts an HTTP server bound to cfg.Listen and blocks until
// ctx is canceled or the listener fails.
func StartServer(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
