package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/storage"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type harness struct {
	repo      *storage.MemoryRepository
	publisher *recordingPublisher
	mux       *http.ServeMux
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	windows, err := availability.ParseWindows("09:00-12:00,14:00-18:00")
	require.NoError(t, err)
	schedule, err := availability.NewSchedule(windows, 30*time.Minute)
	require.NoError(t, err)

	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	repo := storage.NewMemoryRepository().WithClock(func() time.Time {
		tick++
		return t0.Add(time.Duration(tick) * time.Second)
	})
	pub := &recordingPublisher{}

	mux := http.NewServeMux()
	NewBookingHandler(repo, schedule, pub, discardLogger()).Register(mux, nil)
	return &harness{repo: repo, publisher: pub, mux: mux}
}

func (h *harness) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rdr)
	rw := httptest.NewRecorder()
	h.mux.ServeHTTP(rw, req)
	return rw
}

func (h *harness) seed(t *testing.T, name, date, slot string) model.Appointment {
	t.Helper()
	a, err := h.repo.Create(context.Background(), model.AppointmentFields{
		UserName:        name,
		Phone:           "13800138000",
		AppointmentDate: date,
		AppointmentTime: slot,
	})
	require.NoError(t, err)
	return a
}

func decode[T any](t *testing.T, rw *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &v), rw.Body.String())
	return v
}

func validBody() map[string]any {
	return map[string]any{
		"user_name":        "Alice",
		"phone":            "13800138000",
		"appointment_date": "2024-06-03",
		"appointment_time": "09:00-09:30",
		"contact_info":     "alice@example.com",
		"notes":            "",
	}
}
