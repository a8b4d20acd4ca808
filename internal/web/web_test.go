package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/cache"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/config"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/planapi"
)

var fixedNow = time.Date(2024, 3, 20, 13, 0, 0, 0, time.UTC)

// newTestServer wires a Server against a fake upstream. scheduleHits counts
// how often the plan endpoint was actually called.
func newTestServer(t *testing.T, album string) (*Server, *atomic.Int64) {
	t.Helper()

	var scheduleHits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/schedule_student.php":
			scheduleHits.Add(1)
			_, _ = w.Write([]byte(`[
				{},
				{"start":"2024-03-12 10:00:00","end":"2024-03-12 11:30:00","subject":"Analiza","lesson_form":"Wykład"},
				{"start":"2024-03-12 11:00:00","end":"2024-03-12 12:00:00","subject":"Fizyka","lesson_form_short":"L"}
			]`))
		case "/session_periods.php":
			_, _ = w.Write([]byte(`[{"key":"sesja-letnia","start":"2024-06-10","end":"2024-06-30"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.BaseURL = upstream.URL
	cfg.Album = album

	store := cache.NewMemoryStore(func() time.Time { return fixedNow })
	return NewServer(cfg, planapi.NewClient(cfg.BaseURL), store, func() time.Time { return fixedNow }), &scheduleHits
}

func getSchedule(t *testing.T, srv *Server, target string) model.Schedule {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("%s: status %d, body %s", target, rec.Code, rec.Body.String())
	}
	var s model.Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return s
}

func TestHandleSchedule_Week(t *testing.T) {
	srv, _ := newTestServer(t, "12345")

	s := getSchedule(t, srv, "/api/schedule?mode=week&date=2024-03-14")

	if s.Mode != "week" {
		t.Errorf("mode = %q", s.Mode)
	}
	if got := s.RangeStart.Format("2006-01-02"); got != "2024-03-11" {
		t.Errorf("range start = %s", got)
	}
	if len(s.Days) != 7 {
		t.Fatalf("got %d columns", len(s.Days))
	}
	tuesday := s.Days[1]
	if len(tuesday.Events) != 2 {
		t.Fatalf("tuesday events = %d, want 2 (metadata row dropped)", len(tuesday.Events))
	}
	if tuesday.Events[0].WidthPct != 50 || tuesday.Events[1].WidthPct != 50 {
		t.Errorf("overlapping events not split 50/50: %+v", tuesday.Events)
	}
	if len(s.Sessions) != 1 {
		t.Errorf("sessions = %+v", s.Sessions)
	}
}

func TestHandleSchedule_SecondRequestServedFromCache(t *testing.T) {
	srv, hits := newTestServer(t, "12345")

	getSchedule(t, srv, "/api/schedule?mode=week&date=2024-03-14")
	getSchedule(t, srv, "/api/schedule?mode=week&date=2024-03-14")

	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hit %d times, want 1", got)
	}
}

func TestHandleSchedule_DaySharesWeekCacheEntry(t *testing.T) {
	srv, hits := newTestServer(t, "12345")

	// A day view fetches its containing week; navigating to the next day
	// must reuse that entry.
	getSchedule(t, srv, "/api/schedule?mode=day&date=2024-03-12")
	getSchedule(t, srv, "/api/schedule?mode=day&date=2024-03-13")
	getSchedule(t, srv, "/api/schedule?mode=week&date=2024-03-14")

	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hit %d times, want 1", got)
	}
}

func TestHandleSchedule_EmptyIdentity(t *testing.T) {
	srv, hits := newTestServer(t, "")

	s := getSchedule(t, srv, "/api/schedule?mode=week&date=2024-03-14")

	if len(s.Days) != 7 {
		t.Fatalf("got %d columns, want a renderable empty week", len(s.Days))
	}
	for _, day := range s.Days {
		if len(day.Events) != 0 {
			t.Errorf("%v: expected empty column", day.Date)
		}
	}
	if hits.Load() != 0 {
		t.Error("no identity: upstream must not be called")
	}
}

func TestHandleScheduleICS(t *testing.T) {
	srv, _ := newTestServer(t, "12345")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule.ics?mode=week&date=2024-03-14", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "Analiza") {
		t.Errorf("unexpected ICS body:\n%s", body)
	}
}

func TestBasicAuth(t *testing.T) {
	srv, _ := newTestServer(t, "12345")
	srv.cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}

	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without credentials: status %d, want 401", rec.Code)
	}

	// /health stays open.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health: status %d, want 200", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?mode=week&date=2024-03-14", nil)
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with credentials: status %d, want 200", rec.Code)
	}
}
