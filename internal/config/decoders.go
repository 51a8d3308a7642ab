package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return wd, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// WeekdaySet список дней недели: "saturday,sun"
type WeekdaySet map[time.Weekday]struct{}

func (s *WeekdaySet) Decode(value string) error {
	set := make(WeekdaySet)
	for _, item := range splitList(value) {
		wd, err := parseWeekday(item)
		if err != nil {
			return err
		}
		set[wd] = struct{}{}
	}
	*s = set
	return nil
}

// DateSet список дат: "2025-01-01,2025-05-09"
type DateSet map[time.Time]struct{}

func (s *DateSet) Decode(value string) error {
	set := make(DateSet)
	for _, item := range splitList(value) {
		d, err := model.ParseDate(item)
		if err != nil {
			return err
		}
		set[model.DateOf(d)] = struct{}{}
	}
	*s = set
	return nil
}

// WeekdayHours особые часы работы: "saturday=10:00-14:00,friday=09:00-16:00"
type WeekdayHours map[time.Weekday]schedule.Hours

func (h *WeekdayHours) Decode(value string) error {
	hours := make(WeekdayHours)
	for _, item := range splitList(value) {
		day, window, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("weekday hours %q: expected day=HH:MM-HH:MM", item)
		}
		wd, err := parseWeekday(day)
		if err != nil {
			return err
		}

		startRaw, endRaw, ok := strings.Cut(window, "-")
		if !ok {
			return fmt.Errorf("weekday hours %q: expected HH:MM-HH:MM", item)
		}
		start, err := model.ParseTimeOfDay(startRaw)
		if err != nil {
			return err
		}
		end, err := model.ParseTimeOfDay(endRaw)
		if err != nil {
			return err
		}
		hours[wd] = schedule.Hours{Start: start, End: end}
	}
	*h = hours
	return nil
}
