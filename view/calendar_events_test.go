package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"homesage_client/domain"
)

var may15 = domain.CalendarDate{Year: 2024, Month: 5, Day: 15, IsCurrentMonth: true}

func sampleEvents() []domain.Reservation {
	return []domain.Reservation{
		{SaleID: 1, ReservationDatetime: "2024-05-15T14:00:00"},
		{SaleID: 2, ReservationDatetime: "2024-05-16T09:00:00"},
		{SaleID: 3, ReservationDatetime: "2024-05-15T09:30:00"},
		{SaleID: 4, ReservationDatetime: "2024-05-15T11:00:00"},
		{SaleID: 5, ReservationDatetime: "2024-06-15T10:00:00"},
		{SaleID: 6, ReservationDatetime: "not-a-datetime"},
	}
}

func TestEventsForDateFiltersAndSorts(t *testing.T) {
	p := NewEventPager(0)

	events := p.EventsForDate(may15, sampleEvents())

	ids := make([]int64, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.SaleID)
	}
	assert.Equal(t, []int64{3, 4, 1}, ids)
}

func TestPagedEventsUsesPerDayCursor(t *testing.T) {
	p := NewEventPager(2)
	events := sampleEvents()

	page := p.PagedEvents(may15, events)
	assert.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].SaleID)

	p.ChangePage(may15, 1, events)
	page = p.PagedEvents(may15, events)
	assert.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].SaleID)

	// The cursor of a different day is independent.
	may16 := domain.CalendarDate{Year: 2024, Month: 5, Day: 16, IsCurrentMonth: true}
	assert.Equal(t, 0, p.CurrentPage(may16))
	assert.Len(t, p.PagedEvents(may16, events), 1)
}

func TestTotalPagesNeverZero(t *testing.T) {
	p := NewEventPager(3)
	empty := domain.CalendarDate{Year: 2024, Month: 5, Day: 20, IsCurrentMonth: true}

	assert.Equal(t, 1, p.TotalPages(empty, sampleEvents()))
	assert.Equal(t, 1, p.TotalPages(may15, sampleEvents()))
	assert.Equal(t, 2, NewEventPager(2).TotalPages(may15, sampleEvents()))
}

func TestChangePageWrapsBothWays(t *testing.T) {
	p := NewEventPager(1)
	events := sampleEvents() // three events on may15, one per page

	assert.Equal(t, 0, p.CurrentPage(may15))

	p.ChangePage(may15, -1, events)
	assert.Equal(t, 2, p.CurrentPage(may15))

	p.ChangePage(may15, 1, events)
	assert.Equal(t, 0, p.CurrentPage(may15))

	p.ChangePage(may15, 1, events)
	p.ChangePage(may15, 1, events)
	assert.Equal(t, 2, p.CurrentPage(may15))
	p.ChangePage(may15, 1, events)
	assert.Equal(t, 0, p.CurrentPage(may15))
}

func TestEventCount(t *testing.T) {
	p := NewEventPager(3)
	assert.Equal(t, 3, p.EventCount(may15, sampleEvents()))
	assert.Equal(t, 0, p.EventCount(domain.CalendarDate{Year: 2023, Month: 5, Day: 15}, sampleEvents()))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "09:05", FormatTime("2024-05-15T09:05:00"))
	assert.Equal(t, "23:30", FormatTime("2024-12-31T23:30:00"))
	assert.Equal(t, "", FormatTime("garbage"))
}

func TestDateKeyAvoidsStringCollisions(t *testing.T) {
	// "2024-1-12" and "2024-11-2" style collisions cannot happen with a
	// composite key.
	a := KeyFor(domain.CalendarDate{Year: 2024, Month: 1, Day: 12})
	b := KeyFor(domain.CalendarDate{Year: 2024, Month: 11, Day: 2})
	assert.NotEqual(t, a, b)
}
