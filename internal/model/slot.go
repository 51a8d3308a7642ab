package model

import "time"

// Slot бронируемое окно на конкретную дату с ограниченной вместимостью
type Slot struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"` // полночь UTC, см. DateOf
	StartTime       TimeOfDay `json:"start_time"`
	EndTime         TimeOfDay `json:"end_time"`
	IsAvailable     bool      `json:"is_available"`
	MaxBookings     int       `json:"max_bookings"`
	CurrentBookings int       `json:"current_bookings"`
	ServiceID       *int64    `json:"service_id"` // nil - слот подходит для любой услуги
	CreatedAt       time.Time `json:"created_at"`
}

// Remaining возвращает оставшуюся вместимость
func (s *Slot) Remaining() int {
	if s.CurrentBookings >= s.MaxBookings {
		return 0
	}
	return s.MaxBookings - s.CurrentBookings
}

// IsFull checks if capacity is exhausted
func (s *Slot) IsFull() bool {
	return s.CurrentBookings >= s.MaxBookings
}

// IsOpen слот доступен и в нём есть места
func (s *Slot) IsOpen() bool {
	return s.IsAvailable && !s.IsFull()
}

// StartsAt возвращает момент начала слота в зоне loc
func (s *Slot) StartsAt(loc *time.Location) time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(),
		s.StartTime.Hour(), s.StartTime.Minute(), 0, 0, loc)
}

// EndsAt возвращает момент окончания слота в зоне loc
func (s *Slot) EndsAt(loc *time.Location) time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(),
		s.EndTime.Hour(), s.EndTime.Minute(), 0, 0, loc)
}

// WallStart начало слота по настенным часам, см. WallClock
func (s *Slot) WallStart() time.Time {
	return s.StartsAt(time.UTC)
}

// MatchesService проверяет подходит ли слот под фильтр услуги
func (s *Slot) MatchesService(serviceID *int64) bool {
	if serviceID == nil || s.ServiceID == nil {
		return true
	}
	return *s.ServiceID == *serviceID
}

// SlotFilter параметры выборки открытых слотов; даты включительно
type SlotFilter struct {
	From      time.Time
	To        time.Time
	ServiceID *int64
}
