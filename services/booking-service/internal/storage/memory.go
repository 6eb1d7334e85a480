package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
)

// MemoryRepository keeps appointments in process. It mirrors the Postgres
// ordering and aggregation rules and is meant for local runs and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	rows  map[string]model.Appointment
	now   func() time.Time
	newID func() string
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows:  map[string]model.Appointment{},
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the timestamp source. Used by tests.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
	return r
}

func (r *MemoryRepository) Create(_ context.Context, f model.AppointmentFields) (model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	a := model.Appointment{ID: r.newID(), CreatedAt: now, UpdatedAt: now}
	f.Apply(&a)
	r.rows[a.ID] = a
	return a, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, f model.AppointmentFields) (model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	f.Apply(&a)
	a.UpdatedAt = r.now().UTC()
	r.rows[id] = a
	return a, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]model.Appointment, int, error) {
	all := r.filter(func(model.Appointment) bool { return true })
	sortForListing(all)
	return page(all, limit, offset), len(all), nil
}

func (r *MemoryRepository) ListByDate(_ context.Context, date string) ([]model.Appointment, error) {
	// Single date, so the listing order reduces to time ascending.
	appts := r.filter(func(a model.Appointment) bool { return a.AppointmentDate == date })
	sortForListing(appts)
	return appts, nil
}

func (r *MemoryRepository) ListInRange(_ context.Context, dr model.DateRange, limit, offset int) ([]model.Appointment, int, error) {
	appts := r.filter(func(a model.Appointment) bool { return dr.Contains(a.AppointmentDate) })
	sortForListing(appts)
	return page(appts, limit, offset), len(appts), nil
}

func (r *MemoryRepository) Summary(_ context.Context, dr model.DateRange, topUsers int) (model.Summary, error) {
	appts := r.filter(func(a model.Appointment) bool { return dr.Contains(a.AppointmentDate) })

	byDate := map[string]int{}
	bySlot := map[string]int{}
	byUser := map[string]int{}
	for _, a := range appts {
		byDate[a.AppointmentDate]++
		bySlot[a.AppointmentTime]++
		byUser[a.UserName]++
	}

	s := model.Summary{
		TotalAppointments: len(appts),
		TotalUsers:        len(byUser),
		ByDate:            []model.DateCount{},
		ByTimeSlot:        []model.SlotCount{},
		ByUser:            []model.UserCount{},
	}
	for _, kc := range sortedCounts(byDate, byKey) {
		s.ByDate = append(s.ByDate, model.DateCount{Date: kc.key, Count: kc.n})
	}
	for _, kc := range sortedCounts(bySlot, byCountDesc) {
		s.ByTimeSlot = append(s.ByTimeSlot, model.SlotCount{TimeSlot: kc.key, Count: kc.n})
	}
	for i, kc := range sortedCounts(byUser, byCountDesc) {
		if topUsers > 0 && i >= topUsers {
			break
		}
		s.ByUser = append(s.ByUser, model.UserCount{UserName: kc.key, Count: kc.n})
	}
	return s, nil
}

func (r *MemoryRepository) filter(keep func(model.Appointment) bool) []model.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Appointment{}
	for _, a := range r.rows {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

type keyCount struct {
	key string
	n   int
}

func byKey(a, b keyCount) bool { return a.key < b.key }

func byCountDesc(a, b keyCount) bool {
	if a.n != b.n {
		return a.n > b.n
	}
	return a.key < b.key
}

func sortedCounts(m map[string]int, less func(a, b keyCount) bool) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, n := range m {
		out = append(out, keyCount{key: k, n: n})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
