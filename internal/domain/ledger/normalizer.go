package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
)

// RecordError ties a normalization failure to the record that caused it.
type RecordError struct {
	Source   SourceType
	RecordID id.ID
	Err      error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.RecordID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NormalizeSale converts one sale record into an Entry.
//
// gross = unit_price * quantity, cost = cost_price * quantity, offer = offers.
// Missing prices and offers count as zero and a missing quantity counts as one.
func NormalizeSale(r RawSale) (Entry, error) {
	occurred, err := occurredAt(r.SaleDate, r.CreatedAt, "sale_date")
	if err != nil {
		return Entry{}, err
	}

	qty := int64(1)
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	if qty < 1 {
		return Entry{}, apperror.NewInvalidAmount("quantity", qty)
	}

	unitPrice := types.OrZero(r.UnitPrice)
	costPrice := types.OrZero(r.CostPrice)
	offers := types.OrZero(r.Offers)
	if err := nonNegative(
		amount{"unit_price", unitPrice},
		amount{"cost_price", costPrice},
		amount{"offers", offers},
	); err != nil {
		return Entry{}, err
	}

	q := decimal.NewFromInt(qty)
	return Entry{
		ID:           r.ID,
		SourceType:   SourceSale,
		OwnerID:      r.SalesmanID,
		OccurredAt:   occurred,
		Label:        r.ProductName,
		CustomerName: r.CustomerName,
		GrossAmount:  unitPrice.Mul(q),
		CostAmount:   costPrice.Mul(q),
		OfferAmount:  offers,
		Quantity:     qty,
		HasWarranty:  r.HasWarranty,
	}, nil
}

// NormalizeService converts one repair-service record into an Entry.
//
// gross = final_price, cost = issue_price + service_price, offer = offers, quantity = 1.
func NormalizeService(r RawService) (Entry, error) {
	occurred, err := occurredAt(r.ServiceDate, r.CreatedAt, "service_date")
	if err != nil {
		return Entry{}, err
	}

	issue := types.OrZero(r.IssuePrice)
	service := types.OrZero(r.ServicePrice)
	final := types.OrZero(r.FinalPrice)
	offers := types.OrZero(r.Offers)
	if err := nonNegative(
		amount{"issue_price", issue},
		amount{"service_price", service},
		amount{"final_price", final},
		amount{"offers", offers},
	); err != nil {
		return Entry{}, err
	}

	return Entry{
		ID:           r.ID,
		SourceType:   SourceService,
		OwnerID:      r.SalesmanID,
		OccurredAt:   occurred,
		Label:        r.DeviceName,
		CustomerName: r.CustomerName,
		GrossAmount:  final,
		CostAmount:   issue.Add(service),
		OfferAmount:  offers,
		Quantity:     1,
	}, nil
}

// Compute normalizes every sale and service record one at a time.
//
// Records that fail are left out of the returned entries and reported in the returned
// error, which joins one *RecordError per rejected record. A nil error means every
// record was normalized.
func Compute(sales []RawSale, services []RawService) ([]Entry, error) {
	entries := make([]Entry, 0, len(sales)+len(services))
	var errs []error

	for _, s := range sales {
		e, err := NormalizeSale(s)
		if err != nil {
			errs = append(errs, &RecordError{Source: SourceSale, RecordID: s.ID, Err: err})
			continue
		}
		entries = append(entries, e)
	}

	for _, s := range services {
		e, err := NormalizeService(s)
		if err != nil {
			errs = append(errs, &RecordError{Source: SourceService, RecordID: s.ID, Err: err})
			continue
		}
		entries = append(entries, e)
	}

	return entries, errors.Join(errs...)
}

// Rejections lists the record failures carried by an error returned from Compute.
func Rejections(err error) []*RecordError {
	if err == nil {
		return nil
	}
	var out []*RecordError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, Rejections(e)...)
		}
		return out
	}
	var rec *RecordError
	if errors.As(err, &rec) {
		out = append(out, rec)
	}
	return out
}

type amount struct {
	field string
	value types.Money
}

func nonNegative(amounts ...amount) error {
	for _, a := range amounts {
		if a.value.IsNegative() {
			return apperror.NewInvalidAmount(a.field, a.value.String())
		}
	}
	return nil
}

func occurredAt(date, createdAt *time.Time, field string) (time.Time, error) {
	switch {
	case date != nil && !date.IsZero():
		return *date, nil
	case createdAt != nil && !createdAt.IsZero():
		return *createdAt, nil
	default:
		return time.Time{}, apperror.NewMissingRequiredField("record", field)
	}
}
