package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock is a sellable product unit tracked with a quantity-on-hand and a
// unit price. QuantityInStock never goes negative; every change goes
// through the inventory ledger, which uses Version for optimistic
// concurrency (compare-and-set on the persisted document).
type Stock struct {
	ID               string          `json:"id"`
	ProductName      string          `json:"product_name"`
	ProductType      string          `json:"product_type"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	QuantityInStock  decimal.Decimal `json:"quantity_in_stock"`
	UnitOfMeasure    string          `json:"unit_of_measure"`
	AlcoholByVolume  decimal.Decimal `json:"alcohol_by_volume"`
	DistillationDate *time.Time      `json:"distillation_date,omitempty"`
	BottlingDate     *time.Time      `json:"bottling_date,omitempty"`
	AgingMonths      int             `json:"aging_months,omitempty"`
	BarrelType       string          `json:"barrel_type,omitempty"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Location         string          `json:"location"`
	Version          int64           `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
}

// Movement directions for the stock audit trail.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// Movement reasons recorded by the ledger.
const (
	ReasonOrderCreated   = "order_created"
	ReasonOrderCancelled = "order_cancelled"
	ReasonOrderDeleted   = "order_deleted"
	ReasonOrderRollback  = "order_rollback"
	ReasonManualAdjust   = "manual_adjustment"
)

// StockMovement records a single applied quantity change on a stock item.
type StockMovement struct {
	ID          string          `json:"id"`
	StockID     string          `json:"stock_id"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	Resulting   decimal.Decimal `json:"resulting_quantity"`
	Reason      string          `json:"reason"`
	OrderNumber string          `json:"order_number,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
