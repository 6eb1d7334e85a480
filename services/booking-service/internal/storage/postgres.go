package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/apptbook/libs/db"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
)

const appointmentColumns = `
	id::text, user_name, phone, contact_info,
	to_char(appointment_date, 'YYYY-MM-DD'), appointment_time, notes,
	created_at, updated_at`

// Listing order. COLLATE "C" keeps ties in byte order across locales.
const listingOrder = `
	ORDER BY appointment_date DESC, appointment_time COLLATE "C" ASC, created_at ASC, id ASC`

type PostgresRepository struct {
	pool *db.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(pool *db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, f model.AppointmentFields) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, user_name, phone, contact_info, appointment_date, appointment_time, notes)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7)
		RETURNING `+appointmentColumns,
		uuid.NewString(), f.UserName, f.Phone, f.ContactInfo, f.AppointmentDate, f.AppointmentTime, f.Notes)
	appt, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("insert appointment: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, mapNotFound(err)
	}
	return appt, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, f model.AppointmentFields) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET user_name = $2,
			phone = $3,
			contact_info = $4,
			appointment_date = $5::date,
			appointment_time = $6,
			notes = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns,
		id, f.UserName, f.Phone, f.ContactInfo, f.AppointmentDate, f.AppointmentTime, f.Notes)
	appt, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, mapNotFound(err)
	}
	return appt, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return mapNotFound(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]model.Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments`+listingOrder+`
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *PostgresRepository) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_date = $1::date
		ORDER BY appointment_time COLLATE "C" ASC, created_at ASC, id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	return collectAppointments(rows)
}

func (r *PostgresRepository) ListInRange(ctx context.Context, dr model.DateRange, limit, offset int) ([]model.Appointment, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1::date AND $2::date`, dr.Start, dr.End).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count appointments in range: %w", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_date BETWEEN $1::date AND $2::date`+listingOrder+`
		LIMIT $3 OFFSET $4`, dr.Start, dr.End, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments in range: %w", err)
	}
	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *PostgresRepository) Summary(ctx context.Context, dr model.DateRange, topUsers int) (model.Summary, error) {
	var s model.Summary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_name)
		FROM appointments
		WHERE appointment_date BETWEEN $1::date AND $2::date`, dr.Start, dr.End).
		Scan(&s.TotalAppointments, &s.TotalUsers)
	if err != nil {
		return model.Summary{}, fmt.Errorf("count summary: %w", err)
	}

	s.ByDate = []model.DateCount{}
	err = r.collectCounts(ctx, `
		SELECT to_char(appointment_date, 'YYYY-MM-DD'), COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1::date AND $2::date
		GROUP BY appointment_date
		ORDER BY appointment_date ASC`, []any{dr.Start, dr.End}, func(key string, n int) {
		s.ByDate = append(s.ByDate, model.DateCount{Date: key, Count: n})
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary by date: %w", err)
	}

	s.ByTimeSlot = []model.SlotCount{}
	err = r.collectCounts(ctx, `
		SELECT appointment_time, COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1::date AND $2::date
		GROUP BY appointment_time
		ORDER BY COUNT(*) DESC, appointment_time COLLATE "C" ASC`, []any{dr.Start, dr.End}, func(key string, n int) {
		s.ByTimeSlot = append(s.ByTimeSlot, model.SlotCount{TimeSlot: key, Count: n})
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary by time slot: %w", err)
	}

	s.ByUser = []model.UserCount{}
	err = r.collectCounts(ctx, `
		SELECT user_name, COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1::date AND $2::date
		GROUP BY user_name
		ORDER BY COUNT(*) DESC, user_name COLLATE "C" ASC
		LIMIT $3`, []any{dr.Start, dr.End, topUsers}, func(key string, n int) {
		s.ByUser = append(s.ByUser, model.UserCount{UserName: key, Count: n})
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary by user: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) collectCounts(ctx context.Context, sql string, args []any, add func(key string, n int)) error {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		add(key, n)
	}
	return rows.Err()
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.UserName,
		&a.Phone,
		&a.ContactInfo,
		&a.AppointmentDate,
		&a.AppointmentTime,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	appts := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read appointments: %w", err)
	}
	return appts, nil
}
