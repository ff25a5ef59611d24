// Package format renders raw backend values as the localized display
// strings the views show. Prices are in 만원 units.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"homesage_client/view"
)

var printer = message.NewPrinter(language.Korean)

// FormatPrice groups digits the ko-KR way and appends the 만원 unit.
// A missing price renders as "-".
func FormatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return printer.Sprint(number.Decimal(*price)) + "만원"
}

// FormatDate renders "YYYY. MM. DD. HH:MM" (24-hour), or "-" when the
// input does not parse.
func FormatDate(dateString string) string {
	at, err := view.ParseDatetime(dateString)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%04d. %02d. %02d. %02d:%02d",
		at.Year(), int(at.Month()), at.Day(), at.Hour(), at.Minute())
}

// FormatDateTime renders the long Korean form with a 12-hour clock:
// "YYYY년 M월 D일 오전/오후 h:MM".
func FormatDateTime(datetime string) string {
	at, err := view.ParseDatetime(datetime)
	if err != nil {
		return "-"
	}

	meridiem := "오전"
	hour := at.Hour()
	if hour >= 12 {
		meridiem = "오후"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d년 %d월 %d일 %s %d:%02d",
		at.Year(), int(at.Month()), at.Day(), meridiem, hour, at.Minute())
}
