package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/apptbook/libs/httpx"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/validate"
)

type listAppointmentsResponse struct {
	Appointments []appointmentResponse `json:"appointments"`
	Pagination   *pagination           `json:"pagination,omitempty"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// appointmentID returns the {id} path value. Ids that are not uuids cannot
// exist and are reported as not found.
func appointmentID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.NotFound("appointment not found")
	}
	return id, nil
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// No slot conflict check: a second booking of the same slot is stored too.
	appt, err := h.repo.Create(r.Context(), f)
	if err != nil {
		h.writeError(w, r, apperr.Store("failed to create appointment", err))
		return
	}
	h.publish(r.Context(), events.AppointmentCreated, appt)
	httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

// List serves both the booking page table (paged) and the per-day lookup
// (?date=).
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		h.listByDate(w, r, date)
		return
	}

	page, pageSize, err := pageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appts, total, err := h.repo.List(r.Context(), pageSize, offset(page, pageSize))
	if err != nil {
		h.writeError(w, r, apperr.Store("failed to list appointments", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listAppointmentsResponse{
		Appointments: toAppointmentResponses(appts),
		Pagination: &pagination{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages(total, pageSize),
		},
	})
}

func (h *BookingHandler) listByDate(w http.ResponseWriter, r *http.Request, date string) {
	if !validate.Date(date) {
		h.writeError(w, r, apperr.Validation("invalid date format"))
		return
	}
	appts, err := h.repo.ListByDate(r.Context(), date)
	if err != nil {
		h.writeError(w, r, apperr.Store("failed to list appointments", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listAppointmentsResponse{
		Appointments: toAppointmentResponses(appts),
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := appointmentID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appt, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, storeErr(err, "failed to load appointment"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

// Update replaces every mutable field. The body is validated before the id
// is looked up.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := appointmentID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	appt, err := h.repo.Update(r.Context(), id, f)
	if err != nil {
		h.writeError(w, r, storeErr(err, "failed to update appointment"))
		return
	}
	h.publish(r.Context(), events.AppointmentUpdated, appt)
	httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := appointmentID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	appt, err := h.repo.Get(ctx, id)
	if err != nil {
		h.writeError(w, r, storeErr(err, "failed to delete appointment"))
		return
	}
	if err := h.repo.Delete(ctx, id); err != nil {
		h.writeError(w, r, storeErr(err, "failed to delete appointment"))
		return
	}
	h.publish(ctx, events.AppointmentDeleted, appt)
	httpx.WriteJSON(w, http.StatusOK, deleteResponse{Success: true, Message: "appointment deleted"})
}
