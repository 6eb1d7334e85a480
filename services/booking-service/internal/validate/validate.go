// Package validate holds the field checks shared by the booking endpoints.
package validate

import (
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Phone reports whether s is an 11-digit mobile number starting 13-19.
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// Date reports whether s is literally yyyy-MM-dd and names a real calendar
// day. 2024-02-30 matches the pattern but is rejected, as is year 0000,
// which a Postgres date cannot hold.
func Date(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Year() >= 1
}
