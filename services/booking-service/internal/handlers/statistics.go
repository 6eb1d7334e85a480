package handlers

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/apptbook/libs/httpx"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/validate"
)

const modeDetail = "detail"

type dateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type slotCount struct {
	TimeSlot string `json:"timeSlot"`
	Count    int    `json:"count"`
}

type userCount struct {
	UserName string `json:"userName"`
	Count    int    `json:"count"`
}

type summaryResponse struct {
	TotalAppointments int         `json:"totalAppointments"`
	TotalUsers        int         `json:"totalUsers"`
	ByDate            []dateCount `json:"byDate"`
	ByTimeSlot        []slotCount `json:"byTimeSlot"`
	ByUser            []userCount `json:"byUser"`
}

type detailResponse struct {
	Records    []appointmentResponse `json:"records"`
	Pagination pagination            `json:"pagination"`
}

// Statistics serves the dashboard. mode=detail pages through the rows in
// the range; any other mode returns the aggregate summary.
func (h *BookingHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dr := model.DateRange{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
	}
	if dr.Start == "" || dr.End == "" {
		h.writeError(w, r, apperr.Validation("start and end are required"))
		return
	}
	if !validate.Date(dr.Start) || !validate.Date(dr.End) {
		h.writeError(w, r, apperr.Validation("invalid date format"))
		return
	}

	if strings.TrimSpace(q.Get("mode")) == modeDetail {
		h.statisticsDetail(w, r, dr)
		return
	}

	s, err := h.repo.Summary(r.Context(), dr, topUsers)
	if err != nil {
		h.writeError(w, r, apperr.Store("failed to load statistics", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSummaryResponse(s))
}

func (h *BookingHandler) statisticsDetail(w http.ResponseWriter, r *http.Request, dr model.DateRange) {
	page, pageSize, err := pageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appts, total, err := h.repo.ListInRange(r.Context(), dr, pageSize, offset(page, pageSize))
	if err != nil {
		h.writeError(w, r, apperr.Store("failed to load statistics", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detailResponse{
		Records: toAppointmentResponses(appts),
		Pagination: pagination{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages(total, pageSize),
		},
	})
}

func toSummaryResponse(s model.Summary) summaryResponse {
	resp := summaryResponse{
		TotalAppointments: s.TotalAppointments,
		TotalUsers:        s.TotalUsers,
		ByDate:            make([]dateCount, 0, len(s.ByDate)),
		ByTimeSlot:        make([]slotCount, 0, len(s.ByTimeSlot)),
		ByUser:            make([]userCount, 0, len(s.ByUser)),
	}
	for _, d := range s.ByDate {
		resp.ByDate = append(resp.ByDate, dateCount{Date: d.Date, Count: d.Count})
	}
	for _, t := range s.ByTimeSlot {
		resp.ByTimeSlot = append(resp.ByTimeSlot, slotCount{TimeSlot: t.TimeSlot, Count: t.Count})
	}
	for _, u := range s.ByUser {
		resp.ByUser = append(resp.ByUser, userCount{UserName: u.UserName, Count: u.Count})
	}
	return resp
}
