// Package calendar implements the booking calendar state: a fixed
// six-week month grid, date/time selection and past-date blocking. It
// performs no network calls.
package calendar

import (
	"fmt"
	"time"

	"homesage_client/domain"
)

const gridSize = 42

var MorningTimes = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
}

var AfternoonTimes = []string{
	"12:00", "12:30", "13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
	"16:00", "16:30", "17:00", "17:30", "18:00", "18:30", "19:00", "19:30",
}

// Store anchors a displayed month and the user's date/time selection.
// It is meant for a single view goroutine.
type Store struct {
	now          func() time.Time
	current      time.Time
	selectedDate *domain.CalendarDate
	selectedTime string
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock fixes "today" for tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:     now,
		current: now(),
	}
}

func (s *Store) CurrentYear() int {
	return s.current.Year()
}

// CurrentMonth is 1-indexed.
func (s *Store) CurrentMonth() int {
	return int(s.current.Month())
}

func (s *Store) SelectedDate() *domain.CalendarDate {
	if s.selectedDate == nil {
		return nil
	}
	date := *s.selectedDate
	return &date
}

func (s *Store) SelectedTime() string {
	return s.selectedTime
}

// CalendarDates builds the 42-cell grid for the displayed month:
// the previous month's tail fills the leading weekday slots, then every
// day of the current month, then next-month days up to exactly 42.
func (s *Store) CalendarDates() []domain.CalendarDate {
	year, month := s.current.Year(), s.current.Month()
	today := midnight(s.now())

	dates := make([]domain.CalendarDate, 0, gridSize)

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	leading := int(firstDay.Weekday())
	if leading > 0 {
		prevLast := time.Date(year, month, 0, 0, 0, 0, 0, time.Local)
		for i := leading - 1; i >= 0; i-- {
			day := prevLast.Day() - i
			cell := time.Date(prevLast.Year(), prevLast.Month(), day, 0, 0, 0, 0, time.Local)
			dates = append(dates, domain.CalendarDate{
				Year:           prevLast.Year(),
				Month:          int(prevLast.Month()),
				Day:            day,
				IsCurrentMonth: false,
				IsPast:         cell.Before(today),
			})
		}
	}

	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local)
	for day := 1; day <= lastDay.Day(); day++ {
		cell := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		dates = append(dates, domain.CalendarDate{
			Year:           year,
			Month:          int(month),
			Day:            day,
			IsCurrentMonth: true,
			IsPast:         cell.Before(today),
		})
	}

	next := time.Date(year, month+1, 1, 0, 0, 0, 0, time.Local)
	remaining := gridSize - len(dates)
	for day := 1; day <= remaining; day++ {
		dates = append(dates, domain.CalendarDate{
			Year:           next.Year(),
			Month:          int(next.Month()),
			Day:            day,
			IsCurrentMonth: false,
			IsPast:         false,
		})
	}

	return dates
}

// PrevMonth shifts the anchor back one month, pinned to day 1 so month
// lengths cannot overflow.
func (s *Store) PrevMonth() {
	s.current = time.Date(s.current.Year(), s.current.Month()-1, 1, 0, 0, 0, 0, time.Local)
}

func (s *Store) NextMonth() {
	s.current = time.Date(s.current.Year(), s.current.Month()+1, 1, 0, 0, 0, 0, time.Local)
}

// SelectDate ignores past and adjacent-month cells; those are inert in
// the grid.
func (s *Store) SelectDate(date domain.CalendarDate) {
	if date.IsPast || !date.IsCurrentMonth {
		return
	}
	s.selectedDate = &date
}

func (s *Store) SelectTime(t string) {
	s.selectedTime = t
}

func (s *Store) IsSelectedDate(date domain.CalendarDate) bool {
	if s.selectedDate == nil {
		return false
	}
	return date.Year == s.selectedDate.Year &&
		date.Month == s.selectedDate.Month &&
		date.Day == s.selectedDate.Day
}

func (s *Store) IsToday(date domain.CalendarDate) bool {
	today := s.now()
	return date.Year == today.Year() &&
		date.Month == int(today.Month()) &&
		date.Day == today.Day()
}

// ResetSelection clears the selection and returns the anchor to today.
func (s *Store) ResetSelection() {
	s.selectedDate = nil
	s.selectedTime = ""
	s.current = s.now()
}

// FormattedSelection emits the reservation payload, or nil unless both
// a date and a time are chosen.
func (s *Store) FormattedSelection() *domain.FormattedSelection {
	if s.selectedDate == nil || s.selectedTime == "" {
		return nil
	}

	return &domain.FormattedSelection{
		ReserveDate: fmt.Sprintf("%04d-%02d-%02d", s.selectedDate.Year, s.selectedDate.Month, s.selectedDate.Day),
		ReserveTime: s.selectedTime,
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
