package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/apptbook/libs/httpx"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/validate"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
	topUsers        = 10
)

type BookingHandler struct {
	repo      storage.Repository
	schedule  *availability.Schedule
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewBookingHandler(repo storage.Repository, schedule *availability.Schedule, publisher events.Publisher, logger *slog.Logger) *BookingHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &BookingHandler{
		repo:      repo,
		schedule:  schedule,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Register mounts the booking routes. staffOnly guards the dashboard routes
// and may be nil when staff auth is disabled.
func (h *BookingHandler) Register(mux *http.ServeMux, staffOnly httpx.Middleware) {
	guard := func(fn http.HandlerFunc) http.Handler {
		if staffOnly == nil {
			return fn
		}
		return staffOnly(fn)
	}

	mux.HandleFunc("POST /api/appointments", h.Create)
	mux.HandleFunc("GET /api/appointments", h.List)
	mux.HandleFunc("GET /api/appointments/{id}", h.Get)
	mux.Handle("PUT /api/appointments/{id}", guard(h.Update))
	mux.Handle("DELETE /api/appointments/{id}", guard(h.Delete))
	mux.Handle("GET /api/statistics", guard(h.Statistics))
	mux.HandleFunc("GET /api/timeslots", h.TimeSlots)
}

type appointmentRequest struct {
	UserName        string  `json:"user_name"`
	Phone           string  `json:"phone"`
	ContactInfo     *string `json:"contact_info"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime string  `json:"appointment_time"`
	Notes           *string `json:"notes"`
}

type appointmentResponse struct {
	ID              string  `json:"id"`
	UserName        string  `json:"user_name"`
	Phone           string  `json:"phone"`
	ContactInfo     *string `json:"contact_info"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime string  `json:"appointment_time"`
	Notes           *string `json:"notes"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// fields validates req and returns the columns to write. Required fields
// are trimmed; an empty contact_info or notes is stored as NULL.
func (req appointmentRequest) fields() (model.AppointmentFields, error) {
	f := model.AppointmentFields{
		UserName:        strings.TrimSpace(req.UserName),
		Phone:           strings.TrimSpace(req.Phone),
		AppointmentDate: strings.TrimSpace(req.AppointmentDate),
		AppointmentTime: strings.TrimSpace(req.AppointmentTime),
		ContactInfo:     nullIfEmpty(req.ContactInfo),
		Notes:           nullIfEmpty(req.Notes),
	}
	if f.UserName == "" || f.Phone == "" || f.AppointmentDate == "" || f.AppointmentTime == "" {
		return model.AppointmentFields{}, apperr.Validation("user_name, phone, appointment_date and appointment_time are required")
	}
	if !validate.Phone(f.Phone) {
		return model.AppointmentFields{}, apperr.Validation("invalid phone number format")
	}
	if !validate.Date(f.AppointmentDate) {
		return model.AppointmentFields{}, apperr.Validation("invalid date format")
	}
	return f, nil
}

// nullIfEmpty trims s and maps a missing or blank value to nil (SQL NULL).
func nullIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toAppointmentResponse(a model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		UserName:        a.UserName,
		Phone:           a.Phone,
		ContactInfo:     a.ContactInfo,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toAppointmentResponses(appts []model.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid json body")
	}
	return nil
}

// positiveInt reads an optional query parameter that must be >= 1.
func positiveInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return n, nil
}

func pageParams(r *http.Request) (page, pageSize int, err error) {
	page, err = positiveInt(r, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = positiveInt(r, "pageSize", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}

// offset saturates at math.MaxInt so a huge page reads as past the end
// instead of wrapping negative.
func offset(page, pageSize int) int {
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// storeErr classifies an error from the repository.
func storeErr(err error, msg string) error {
	if storage.IsNotFound(err) {
		return apperr.NotFound("appointment not found")
	}
	return apperr.Store(msg, err)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"err", err,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	httpx.WriteError(w, status, apperr.PublicMessage(err))
}

// publish emits a change event. Failures are logged and never surface to
// the caller; the write has already committed.
func (h *BookingHandler) publish(ctx context.Context, eventType string, a model.Appointment) {
	evt, err := events.NewAppointmentEvent(eventType, a, h.now())
	if err == nil {
		err = h.publisher.Publish(ctx, evt)
	}
	if err != nil {
		h.logger.Warn("event publish failed",
			"err", err,
			"event_type", eventType,
			"appointment_id", a.ID,
			"request_id", httpx.RequestIDFromContext(ctx),
		)
	}
}
