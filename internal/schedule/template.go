// Package schedule describes the agency's weekly working template and slices
// calendar days into bookable buckets.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
)

// Hours is a half-open wall-clock window [Start, End).
type Hours struct {
	Start model.TimeOfDay
	End   model.TimeOfDay
}

// IsZero reports an unset window.
func (h Hours) IsZero() bool {
	return h.Start == 0 && h.End == 0
}

// Overlaps reports whether [start, end) intersects h.
func (h Hours) Overlaps(start, end model.TimeOfDay) bool {
	if h.Start >= h.End {
		return false
	}
	return start < h.End && end > h.Start
}

func (h Hours) String() string {
	return h.Start.String() + "-" + h.End.String()
}

// Bucket is one generated slot window.
type Bucket struct {
	Start model.TimeOfDay
	End   model.TimeOfDay
}

// Template is the process-wide working template. It is built once from
// configuration and must not be mutated afterwards.
type Template struct {
	Location     *time.Location
	SlotDuration time.Duration
	MaxBookings  int
	AdvanceDays  int
	ReminderLead time.Duration

	// WorkHours per weekday; a weekday without an entry is closed.
	WorkHours  map[time.Weekday]Hours
	Lunch      Hours
	ClosedDays map[time.Weekday]bool
	Holidays   map[time.Time]bool // keys are model.DateOf values
}

// Validate checks the template for values the generator cannot work with.
func (t *Template) Validate() error {
	var errs []error

	if t.Location == nil {
		errs = append(errs, errors.New("location is required"))
	}
	if t.SlotDuration < time.Minute || t.SlotDuration%time.Minute != 0 {
		errs = append(errs, fmt.Errorf("slot duration %s must be a positive whole number of minutes", t.SlotDuration))
	}
	if t.MaxBookings < 1 {
		errs = append(errs, fmt.Errorf("max bookings per slot must be at least 1, got %d", t.MaxBookings))
	}
	if t.AdvanceDays < 0 {
		errs = append(errs, fmt.Errorf("advance booking days must not be negative, got %d", t.AdvanceDays))
	}
	if t.ReminderLead < 0 {
		errs = append(errs, fmt.Errorf("reminder lead must not be negative, got %s", t.ReminderLead))
	}
	for wd, h := range t.WorkHours {
		if h.Start >= h.End || h.End > model.MinutesPerDay {
			errs = append(errs, fmt.Errorf("invalid work hours %s for %s", h, wd))
		}
	}
	if !t.Lunch.IsZero() && t.Lunch.Start >= t.Lunch.End {
		errs = append(errs, fmt.Errorf("invalid lunch break %s", t.Lunch))
	}

	return errors.Join(errs...)
}

// IsWorkingDay reports whether slots may be generated on date.
func (t *Template) IsWorkingDay(date time.Time) bool {
	date = model.DateOf(date)
	if t.ClosedDays[date.Weekday()] {
		return false
	}
	if t.Holidays[date] {
		return false
	}
	_, ok := t.WorkHours[date.Weekday()]
	return ok
}

// Buckets slices the working hours of date into SlotDuration windows. A
// window touching the lunch break is dropped and slicing resumes when lunch
// ends; a window running past closing time is dropped.
func (t *Template) Buckets(date time.Time) []Bucket {
	if !t.IsWorkingDay(date) {
		return nil
	}

	hours := t.WorkHours[model.DateOf(date).Weekday()]
	step := model.TimeOfDay(t.SlotDuration / time.Minute)
	if step <= 0 {
		return nil
	}

	var buckets []Bucket
	for start := hours.Start; start+step <= hours.End; {
		end := start + step
		if t.Lunch.Overlaps(start, end) {
			start = t.Lunch.End
			continue
		}
		buckets = append(buckets, Bucket{Start: start, End: end})
		start = end
	}

	return buckets
}

// Today returns the current calendar date in the agency zone.
func (t *Template) Today(now time.Time) time.Time {
	return model.DateOf(now.In(t.Location))
}

// BookingWindow returns the first and last dates open for booking.
func (t *Template) BookingWindow(now time.Time) (from, to time.Time) {
	from = t.Today(now)
	return from, from.AddDate(0, 0, t.AdvanceDays)
}
