package model

// DateRange is an inclusive range of yyyy-MM-dd dates.
type DateRange struct {
	Start string
	End   string
}

// Contains reports whether date falls inside the range. Dates are compared
// as yyyy-MM-dd strings, which order the same way as the calendar.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

type DateCount struct {
	Date  string
	Count int
}

type SlotCount struct {
	TimeSlot string
	Count    int
}

type UserCount struct {
	UserName string
	Count    int
}

type Summary struct {
	TotalAppointments int
	TotalUsers        int
	ByDate            []DateCount
	ByTimeSlot        []SlotCount
	ByUser            []UserCount
}
