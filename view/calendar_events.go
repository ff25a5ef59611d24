package view

import (
	"fmt"
	"sort"
	"time"

	"homesage_client/domain"
)

const defaultEventPageSize = 3

// DateKey identifies one calendar day. A composite key instead of a
// formatted string, so "2024-1-2" and "2024-01-02" cannot collide.
type DateKey struct {
	Year  int
	Month int
	Day   int
}

func KeyFor(date domain.CalendarDate) DateKey {
	return DateKey{Year: date.Year, Month: date.Month, Day: date.Day}
}

// EventPager filters, sorts and pages reservation events per calendar
// day. Each day keeps its own zero-indexed page cursor.
type EventPager struct {
	pageSize     int
	currentPages map[DateKey]int
}

func NewEventPager(pageSize int) *EventPager {
	if pageSize <= 0 {
		pageSize = defaultEventPageSize
	}
	return &EventPager{
		pageSize:     pageSize,
		currentPages: make(map[DateKey]int),
	}
}

// EventsForDate returns the events falling on the exact (year, month,
// day) tuple, sorted ascending by timestamp. Events whose datetime does
// not parse are dropped.
func (p *EventPager) EventsForDate(date domain.CalendarDate, events []domain.Reservation) []domain.Reservation {
	matched := make([]domain.Reservation, 0)
	for _, event := range events {
		at, err := ParseDatetime(event.ReservationDatetime)
		if err != nil {
			continue
		}
		if at.Year() == date.Year && int(at.Month()) == date.Month && at.Day() == date.Day {
			matched = append(matched, event)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, _ := ParseDatetime(matched[i].ReservationDatetime)
		b, _ := ParseDatetime(matched[j].ReservationDatetime)
		return a.Before(b)
	})

	return matched
}

func (p *EventPager) CurrentPage(date domain.CalendarDate) int {
	return p.currentPages[KeyFor(date)]
}

// PagedEvents slices the day's sorted events at its page cursor.
func (p *EventPager) PagedEvents(date domain.CalendarDate, events []domain.Reservation) []domain.Reservation {
	dateEvents := p.EventsForDate(date, events)
	start := p.currentPages[KeyFor(date)] * p.pageSize
	if start < 0 || start >= len(dateEvents) {
		return nil
	}
	end := start + p.pageSize
	if end > len(dateEvents) {
		end = len(dateEvents)
	}
	return dateEvents[start:end]
}

// TotalPages never reports zero, even for an empty day, so the pager
// controls stay usable.
func (p *EventPager) TotalPages(date domain.CalendarDate, events []domain.Reservation) int {
	count := len(p.EventsForDate(date, events))
	pages := (count + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ChangePage moves the day's cursor by direction (±1) with wraparound
// on both ends.
func (p *EventPager) ChangePage(date domain.CalendarDate, direction int, events []domain.Reservation) {
	key := KeyFor(date)
	totalPages := p.TotalPages(date, events)

	newPage := p.currentPages[key] + direction
	if newPage < 0 {
		newPage = totalPages - 1
	}
	if newPage >= totalPages {
		newPage = 0
	}

	p.currentPages[key] = newPage
}

func (p *EventPager) EventCount(date domain.CalendarDate, events []domain.Reservation) int {
	return len(p.EventsForDate(date, events))
}

// FormatTime renders hours:minutes in zero-padded 24-hour form, or ""
// when the datetime does not parse.
func FormatTime(datetime string) string {
	at, err := ParseDatetime(datetime)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", at.Hour(), at.Minute())
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseDatetime reads the backend's reservation datetime, which comes
// in LocalDateTime or RFC3339 shape depending on the endpoint.
func ParseDatetime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range datetimeLayouts {
		at, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return at, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
