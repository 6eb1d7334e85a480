package model

import "time"

// Appointment is one booking row. ContactInfo and Notes are nil when the
// column is NULL.
type Appointment struct {
	ID              string
	UserName        string
	Phone           string
	ContactInfo     *string
	AppointmentDate string // yyyy-MM-dd
	AppointmentTime string // slot label, e.g. 09:00-09:30
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AppointmentFields are the caller-supplied columns, written in full on both
// create and update.
type AppointmentFields struct {
	UserName        string
	Phone           string
	ContactInfo     *string
	AppointmentDate string
	AppointmentTime string
	Notes           *string
}

// Apply copies the mutable fields onto a.
func (f AppointmentFields) Apply(a *Appointment) {
	a.UserName = f.UserName
	a.Phone = f.Phone
	a.ContactInfo = f.ContactInfo
	a.AppointmentDate = f.AppointmentDate
	a.AppointmentTime = f.AppointmentTime
	a.Notes = f.Notes
}
