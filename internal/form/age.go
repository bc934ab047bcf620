package form

import (
	"strings"
	"time"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

var epoch = time.Unix(0, 0).UTC()

// AgeAt derives the age field from a birth date. The elapsed time is laid
// over the Unix epoch and the year offset taken, so leap days can shift the
// result by a day around birthdays. ok is false when birthDate is blank or
// not a YYYY-MM-DD date.
func AgeAt(birthDate string, now time.Time) (age int, ok bool) {
	b, err := time.Parse(DateLayout, strings.TrimSpace(birthDate))
	if err != nil {
		return 0, false
	}
	age = epoch.Add(now.Sub(b)).Year() - 1970
	if age < 0 {
		age = -age
	}
	return age, true
}
