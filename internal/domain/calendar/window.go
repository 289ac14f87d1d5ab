package calendar

import (
	"fmt"
	"time"

	"ganji/internal/core/apperror"
)

// Kind identifies how a Window was specified.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
	KindRange   Kind = "range"
)

// MaxSeriesDays bounds per-day series so a careless range cannot allocate without limit.
const MaxSeriesDays = 366

// Window is a time filter. Every kind reduces to an inclusive [Start, End] day range.
type Window struct {
	Kind  Kind
	Start Date
	End   Date
}

// Daily returns the window covering a single day.
func Daily(d Date) Window {
	return Window{Kind: KindDaily, Start: d, End: d}
}

// Monthly returns the window covering a calendar month.
func Monthly(month time.Month, year int) Window {
	start := NewDate(year, month, 1)
	return Window{Kind: KindMonthly, Start: start, End: NewDate(year, month+1, 0)}
}

// Yearly returns the window covering a calendar year.
func Yearly(year int) Window {
	return Window{Kind: KindYearly, Start: NewDate(year, time.January, 1), End: NewDate(year, time.December, 31)}
}

// Range returns the window from start to end, both inclusive.
// An inverted range is representable but contains no dates; Validate rejects it.
func Range(start, end Date) Window {
	return Window{Kind: KindRange, Start: start, End: end}
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) Window {
	return Monthly(d.Month, d.Year)
}

// YearOf returns the calendar year containing d.
func YearOf(d Date) Window {
	return Yearly(d.Year)
}

// Validate checks that the window is well formed.
func (w Window) Validate() error {
	switch w.Kind {
	case KindDaily, KindMonthly, KindYearly, KindRange:
	default:
		return apperror.NewValidation(fmt.Sprintf("unknown window kind %q", w.Kind))
	}
	if w.Start.IsZero() || w.End.IsZero() {
		return apperror.NewValidation("window bounds are required")
	}
	if w.Start.After(w.End) {
		return apperror.NewValidation("window start must not be after end").
			WithDetail("start", w.Start.String()).
			WithDetail("end", w.End.String())
	}
	return nil
}

// Contains reports whether d falls inside the window, bounds inclusive.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Elapsed reports whether the window closed before today.
func (w Window) Elapsed(today Date) bool {
	return today.After(w.End)
}

// Previous returns the window of the same kind immediately before w.
func (w Window) Previous() Window {
	switch w.Kind {
	case KindDaily:
		return Daily(w.Start.AddDays(-1))
	case KindMonthly:
		return Monthly(w.Start.Month-1, w.Start.Year)
	case KindYearly:
		return Yearly(w.Start.Year - 1)
	default:
		length := w.Len()
		return Range(w.Start.AddDays(-length), w.Start.AddDays(-1))
	}
}

// Len returns the number of days in the window, zero for an inverted range.
func (w Window) Len() int {
	if w.Start.After(w.End) {
		return 0
	}
	start := w.Start.Time(time.UTC)
	end := w.End.Time(time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// Days lists every date in the window in ascending order.
func (w Window) Days() []Date {
	n := w.Len()
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, w.Start.AddDays(i))
	}
	return days
}

// String describes the window for logs and report headers.
func (w Window) String() string {
	switch w.Kind {
	case KindDaily:
		return w.Start.String()
	case KindMonthly:
		return fmt.Sprintf("%04d-%02d", w.Start.Year, int(w.Start.Month))
	case KindYearly:
		return fmt.Sprintf("%04d", w.Start.Year)
	default:
		return w.Start.String() + ".." + w.End.String()
	}
}
