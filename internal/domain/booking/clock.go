package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GracePeriod is how long after its start a booking stays in the store.
const GracePeriod = 12 * time.Hour

const dateLayout = "2006-01-02"

// ParseClock12 converts "h:mm AM|PM" into a 24-hour hour and minute.
// 12 AM is hour 0, 12 PM stays 12, and other PM hours add 12.
func ParseClock12(s string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hm := strings.SplitN(fields[0], ":", 2)
	if len(hm) != 2 || len(hm[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err = strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: hour in %q", ErrInvalidTime, s)
	}
	minute, err = strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute in %q", ErrInvalidTime, s)
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("%w: meridiem in %q", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

// StartInstant combines a YYYY-MM-DD date and a 12-hour clock in loc.
func StartInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	hour, minute, err := ParseClock12(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// ExpiryInstant is the start instant plus GracePeriod.
func ExpiryInstant(date, clock string, loc *time.Location) (time.Time, error) {
	start, err := StartInstant(date, clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(GracePeriod), nil
}
