package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
)

// ErrNotFound is returned when no appointment has the requested id.
var ErrNotFound = errors.New("appointment not found")

// Repository is the appointment store. Every method is a single statement
// against the backend; nothing spans a transaction.
type Repository interface {
	Create(ctx context.Context, f model.AppointmentFields) (model.Appointment, error)
	Get(ctx context.Context, id string) (model.Appointment, error)
	Update(ctx context.Context, id string, f model.AppointmentFields) (model.Appointment, error)
	Delete(ctx context.Context, id string) error
	// List pages through every appointment, newest date first.
	List(ctx context.Context, limit, offset int) ([]model.Appointment, int, error)
	// ListByDate returns the appointments on date ordered by time.
	ListByDate(ctx context.Context, date string) ([]model.Appointment, error)
	ListInRange(ctx context.Context, r model.DateRange, limit, offset int) ([]model.Appointment, int, error)
	Summary(ctx context.Context, r model.DateRange, topUsers int) (model.Summary, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// mapNotFound converts driver errors that mean "no such row" into
// ErrNotFound. A malformed uuid (22P02) can never match a row.
func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return ErrNotFound
	}
	return err
}

// sortForListing orders by date desc, then time asc. Creation order and id
// break the remaining ties so pages are stable.
func sortForListing(appts []model.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		if a.AppointmentDate != b.AppointmentDate {
			return a.AppointmentDate > b.AppointmentDate
		}
		if a.AppointmentTime != b.AppointmentTime {
			return a.AppointmentTime < b.AppointmentTime
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func page(appts []model.Appointment, limit, offset int) []model.Appointment {
	if offset < 0 || offset >= len(appts) {
		return []model.Appointment{}
	}
	end := offset + limit
	if limit <= 0 || end > len(appts) {
		end = len(appts)
	}
	return appts[offset:end]
}
