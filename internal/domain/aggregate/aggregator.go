// Package aggregate filters ledger entries by time window and dimension and reduces
// them into profit summaries.
package aggregate

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/ledger"
)

// Filters narrows entries beyond the time window. Zero value matches everything.
type Filters struct {
	OwnerID *id.ID
	// Search is matched case-insensitively against label and customer name.
	Search string
	Source ledger.SourceType
}

// Summary is the reduction of a set of entries.
type Summary struct {
	TotalRevenue  types.Money `json:"totalRevenue"`
	TotalProfit   types.Money `json:"totalProfit"`
	TotalOffers   types.Money `json:"totalOffers"`
	ItemCount     int64       `json:"itemCount"`
	EntryCount    int         `json:"entryCount"`
	WarrantyCount int         `json:"warrantyCount"`
}

// ZeroSummary is the summary of an empty entry set.
func ZeroSummary() Summary {
	return Summary{
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		TotalOffers:  decimal.Zero,
	}
}

// OwnerSummary is a Summary for one salesperson.
type OwnerSummary struct {
	OwnerID id.ID   `json:"ownerId"`
	Summary Summary `json:"summary"`
}

// DayPoint is a Summary for one calendar day.
type DayPoint struct {
	Date    calendar.Date `json:"date"`
	Summary Summary       `json:"summary"`
}

// Aggregator reduces entries over calendar windows evaluated in one time zone.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	loc *time.Location
}

// New creates an Aggregator. A nil location means UTC.
func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

// Location returns the time zone used to turn timestamps into dates.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// DateOf returns the shop-local calendar date of an entry.
func (a *Aggregator) DateOf(e ledger.Entry) calendar.Date {
	return calendar.DateIn(e.OccurredAt, a.loc)
}

// Filter returns the entries inside the window that satisfy every filter, in input order.
func (a *Aggregator) Filter(entries []ledger.Entry, w calendar.Window, f Filters) []ledger.Entry {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if !w.Contains(a.DateOf(e)) {
			continue
		}
		if f.OwnerID != nil && (e.OwnerID == nil || *e.OwnerID != *f.OwnerID) {
			continue
		}
		if f.Source != "" && e.SourceType != f.Source {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Label), search) &&
			!strings.Contains(strings.ToLower(e.CustomerName), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Aggregate filters entries and reduces the remainder to a Summary.
// An empty result yields ZeroSummary, never an error.
func (a *Aggregator) Aggregate(entries []ledger.Entry, w calendar.Window, f Filters) Summary {
	return Reduce(a.Filter(entries, w, f))
}

// Reduce sums entries without filtering.
func Reduce(entries []ledger.Entry) Summary {
	s := ZeroSummary()
	for _, e := range entries {
		s.TotalRevenue = s.TotalRevenue.Add(e.GrossAmount)
		s.TotalProfit = s.TotalProfit.Add(ledger.Profit(e))
		s.TotalOffers = s.TotalOffers.Add(e.OfferAmount)
		s.ItemCount += e.Quantity
		s.EntryCount++
		if e.HasWarranty {
			s.WarrantyCount++
		}
	}
	return s
}

// SortForDisplay orders entries newest first, breaking ties by descending id.
// The input slice is not modified.
func SortForDisplay(entries []ledger.Entry) []ledger.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b ledger.Entry) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return id.Compare(b.ID, a.ID)
	})
	return out
}

// ByOwner summarizes the window per owner. Entries without an owner are skipped.
// Owners are reduced concurrently over disjoint slices; the result is ordered by owner id.
func (a *Aggregator) ByOwner(entries []ledger.Entry, w calendar.Window, f Filters) []OwnerSummary {
	f.OwnerID = nil
	groups := make(map[id.ID][]ledger.Entry)
	for _, e := range a.Filter(entries, w, f) {
		if e.OwnerID == nil {
			continue
		}
		groups[*e.OwnerID] = append(groups[*e.OwnerID], e)
	}

	owners := make([]id.ID, 0, len(groups))
	for owner := range groups {
		owners = append(owners, owner)
	}
	slices.SortFunc(owners, id.Compare)

	result := make([]OwnerSummary, len(owners))
	var wg sync.WaitGroup
	for i, owner := range owners {
		wg.Add(1)
		go func(i int, owner id.ID) {
			defer wg.Done()
			result[i] = OwnerSummary{OwnerID: owner, Summary: Reduce(groups[owner])}
		}(i, owner)
	}
	wg.Wait()

	return result
}

// Daily returns one point per calendar day of the window, including days with no entries.
// Windows longer than calendar.MaxSeriesDays are truncated to their first MaxSeriesDays days.
func (a *Aggregator) Daily(entries []ledger.Entry, w calendar.Window, f Filters) []DayPoint {
	days := w.Days()
	if len(days) > calendar.MaxSeriesDays {
		days = days[:calendar.MaxSeriesDays]
	}

	buckets := make(map[calendar.Date][]ledger.Entry, len(days))
	for _, e := range a.Filter(entries, w, f) {
		d := a.DateOf(e)
		buckets[d] = append(buckets[d], e)
	}

	points := make([]DayPoint, len(days))
	for i, d := range days {
		points[i] = DayPoint{Date: d, Summary: Reduce(buckets[d])}
	}
	return points
}
