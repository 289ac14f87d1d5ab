// Package dto holds request and response bodies of the HTTP API.
package dto

import (
	"fmt"
	"time"

	"ganji/internal/core/apperror"
	"ganji/internal/domain/calendar"
)

// WindowRequest selects a time window from query parameters.
//
//	kind=daily&date=2024-03-05
//	kind=monthly&year=2024&month=3
//	kind=yearly&year=2024
//	kind=range&from=2024-03-01&to=2024-03-15
//
// Missing parts default to the period containing today; an empty kind means monthly.
type WindowRequest struct {
	Kind  string `form:"kind"`
	Date  string `form:"date"`
	Year  int    `form:"year"`
	Month int    `form:"month"`
	From  string `form:"from"`
	To    string `form:"to"`
}

// ToWindow resolves the request relative to today and validates the result.
func (r WindowRequest) ToWindow(today calendar.Date) (calendar.Window, error) {
	var w calendar.Window

	switch calendar.Kind(r.Kind) {
	case calendar.KindDaily:
		d := today
		if r.Date != "" {
			parsed, err := parseDate("date", r.Date)
			if err != nil {
				return calendar.Window{}, err
			}
			d = parsed
		}
		w = calendar.Daily(d)

	case calendar.KindMonthly, "":
		year, month := today.Year, today.Month
		if r.Year != 0 {
			year = r.Year
		}
		if r.Month != 0 {
			if r.Month < 1 || r.Month > 12 {
				return calendar.Window{}, apperror.NewValidation("month must be between 1 and 12").
					WithDetail("month", r.Month)
			}
			month = time.Month(r.Month)
		}
		w = calendar.Monthly(month, year)

	case calendar.KindYearly:
		year := today.Year
		if r.Year != 0 {
			year = r.Year
		}
		w = calendar.Yearly(year)

	case calendar.KindRange:
		if r.From == "" || r.To == "" {
			return calendar.Window{}, apperror.NewValidation("from and to are required for a range window")
		}
		from, err := parseDate("from", r.From)
		if err != nil {
			return calendar.Window{}, err
		}
		to, err := parseDate("to", r.To)
		if err != nil {
			return calendar.Window{}, err
		}
		w = calendar.Range(from, to)

	default:
		return calendar.Window{}, apperror.NewValidation(fmt.Sprintf("unknown window kind %q", r.Kind))
	}

	if err := w.Validate(); err != nil {
		return calendar.Window{}, err
	}
	return w, nil
}

// WindowResponse echoes the resolved window.
type WindowResponse struct {
	Kind  calendar.Kind `json:"kind"`
	Start calendar.Date `json:"start"`
	End   calendar.Date `json:"end"`
	Label string        `json:"label"`
}

// FromWindow converts a window for a response.
func FromWindow(w calendar.Window) WindowResponse {
	return WindowResponse{Kind: w.Kind, Start: w.Start, End: w.End, Label: w.String()}
}

func parseDate(field, value string) (calendar.Date, error) {
	d, err := calendar.ParseDate(value)
	if err != nil {
		return calendar.Date{}, apperror.NewValidation(fmt.Sprintf("invalid %s, expected %s", field, calendar.DateLayout)).
			WithDetail(field, value)
	}
	return d, nil
}
