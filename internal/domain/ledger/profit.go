package ledger

import (
	"ganji/internal/core/types"
)

// Profit returns gross - cost - offer for one entry.
//
// This is the only profit formula in the codebase. It applies identically to sales and
// services, never multiplies by quantity, and keeps negative results (a loss) as they are.
func Profit(e Entry) types.Money {
	return e.GrossAmount.Sub(e.CostAmount).Sub(e.OfferAmount)
}

// Profit is a convenience for ledger.Profit(e).
func (e Entry) Profit() types.Money {
	return Profit(e)
}

// Line is an entry annotated with its profit for display.
type Line struct {
	Entry
	Profit types.Money `json:"profit"`
}

// Annotate pairs every entry with its profit, preserving order.
func Annotate(entries []Entry) []Line {
	lines := make([]Line, len(entries))
	for i, e := range entries {
		lines[i] = Line{Entry: e, Profit: Profit(e)}
	}
	return lines
}
