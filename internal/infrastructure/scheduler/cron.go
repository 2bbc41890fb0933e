package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSchedule is returned for schedules that cannot be parsed
var ErrInvalidSchedule = errors.New("invalid schedule")

// Daily is a time of day in the scheduler's location
type Daily struct {
	Hour   int
	Minute int
}

// ParseDaily parses the minute and hour fields of a cron expression such as
// "30 3 * * *". Only fixed daily times are supported.
func ParseDaily(expr string) (Daily, error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return Daily{}, fmt.Errorf("%w: %q needs minute and hour fields", ErrInvalidSchedule, expr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return Daily{}, fmt.Errorf("%w: %q only daily schedules are supported", ErrInvalidSchedule, expr)
		}
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return Daily{}, fmt.Errorf("%w: minute must be 0-59, got %q", ErrInvalidSchedule, parts[0])
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return Daily{}, fmt.Errorf("%w: hour must be 0-23, got %q", ErrInvalidSchedule, parts[1])
	}
	return Daily{Hour: hour, Minute: minute}, nil
}

// Due reports whether now falls in the scheduled minute
func (d Daily) Due(now time.Time) bool {
	return now.Hour() == d.Hour && now.Minute() == d.Minute
}

// Next returns the first scheduled time strictly after now
func (d Daily) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d Daily) String() string {
	return fmt.Sprintf("%d %d * * *", d.Minute, d.Hour)
}
