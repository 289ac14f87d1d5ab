// Package ledger turns heterogeneous sale and repair-service records into canonical
// ledger entries and computes the profit ("ganji") of each entry.
package ledger

import (
	"time"

	"ganji/internal/core/id"
	"ganji/internal/core/types"
)

// SourceType discriminates the record an entry was normalized from.
type SourceType string

const (
	SourceSale    SourceType = "sale"
	SourceService SourceType = "service"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	return s == SourceSale || s == SourceService
}

// Entry is the canonical, source-agnostic transaction record.
// Amounts are whole-transaction values: quantity is already folded into Gross and Cost.
type Entry struct {
	ID           id.ID      `json:"id"`
	SourceType   SourceType `json:"sourceType"`
	OwnerID      *id.ID     `json:"ownerId,omitempty"`
	OccurredAt   time.Time  `json:"occurredAt"`
	Label        string     `json:"label"`
	CustomerName string     `json:"customerName,omitempty"`

	GrossAmount types.Money `json:"grossAmount"`
	CostAmount  types.Money `json:"costAmount"`
	OfferAmount types.Money `json:"offerAmount"`
	Quantity    int64       `json:"quantity"`
	HasWarranty bool        `json:"hasWarranty"`
}

// RawSale is a merchandise sale as the storage layer returns it.
// Nullable columns stay nullable here; defaults are applied by NormalizeSale.
type RawSale struct {
	ID           id.ID               `db:"id"`
	SalesmanID   *id.ID              `db:"salesman_id"`
	SaleDate     *time.Time          `db:"sale_date"`
	CreatedAt    *time.Time          `db:"created_at"`
	UnitPrice    types.OptionalMoney `db:"unit_price"`
	CostPrice    types.OptionalMoney `db:"cost_price"`
	Quantity     *int64              `db:"quantity"`
	Offers       types.OptionalMoney `db:"offers"`
	HasWarranty  bool                `db:"has_warranty"`
	ProductName  string              `db:"product_name"`
	CustomerName string              `db:"customer_name"`
}

// RawService is a device-repair job as the storage layer returns it.
// SalesmanID is optional: repair jobs are not always attributed to a salesperson.
type RawService struct {
	ID           id.ID               `db:"id"`
	SalesmanID   *id.ID              `db:"salesman_id"`
	ServiceDate  *time.Time          `db:"service_date"`
	CreatedAt    *time.Time          `db:"created_at"`
	IssuePrice   types.OptionalMoney `db:"issue_price"`
	ServicePrice types.OptionalMoney `db:"service_price"`
	FinalPrice   types.OptionalMoney `db:"final_price"`
	Offers       types.OptionalMoney `db:"offers"`
	DeviceName   string              `db:"device_name"`
	CustomerName string              `db:"customer_name"`
}
