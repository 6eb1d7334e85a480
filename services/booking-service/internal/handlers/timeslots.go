package handlers

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/apptbook/libs/httpx"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/validate"
)

type timeSlotItem struct {
	Time     string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}

type timeSlotsResponse struct {
	TimeSlots []timeSlotItem `json:"timeSlots"`
}

// TimeSlots lists the day's slots with a booked flag. Nothing is reserved:
// a free slot can be taken before the client submits.
func (h *BookingHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		h.writeError(w, r, apperr.Validation("date is required"))
		return
	}
	if !validate.Date(date) {
		h.writeError(w, r, apperr.Validation("invalid date format"))
		return
	}

	appts, err := h.repo.ListByDate(r.Context(), date)
	if err != nil {
		h.writeError(w, r, apperr.Store("failed to load time slots", err))
		return
	}
	booked := make([]string, 0, len(appts))
	for _, a := range appts {
		booked = append(booked, a.AppointmentTime)
	}

	slots := h.schedule.Annotate(booked)
	resp := timeSlotsResponse{TimeSlots: make([]timeSlotItem, 0, len(slots))}
	for _, s := range slots {
		resp.TimeSlots = append(resp.TimeSlots, timeSlotItem{Time: s.Time, IsBooked: s.IsBooked})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
