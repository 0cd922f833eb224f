package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ordersight/backend/internal/domain/shared"
)

// Address holds the billing or shipping address columns carried on every
// order-level row of the export.
type Address struct {
	Name         string `json:"name"`
	Street       string `json:"street"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	Company      string `json:"company"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	Province     string `json:"province"`
	ProvinceName string `json:"province_name"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

// Order is one logical order, deduplicated across the repeated rows of an
// order export. Monetary fields are nil when the source cell was blank or
// unparseable; required text fields carry placeholders instead of being empty.
type Order struct {
	shared.BaseEntity
	UserID   uuid.UUID `json:"user_id"`
	UploadID uuid.UUID `json:"upload_id"`

	// ExternalOrderID is the source system's identifier, unique within
	// (user, upload) after aggregation.
	ExternalOrderID string `json:"external_order_id"`

	Name              string           `json:"name"`
	Email             string           `json:"email"`
	FinancialStatus   string           `json:"financial_status"`
	PaidAt            *time.Time       `json:"paid_at,omitempty"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	FulfilledAt       *time.Time       `json:"fulfilled_at,omitempty"`
	AcceptsMarketing  string           `json:"accepts_marketing"`
	Currency          string           `json:"currency"`
	Subtotal          *decimal.Decimal `json:"subtotal,omitempty"`
	Shipping          *decimal.Decimal `json:"shipping,omitempty"`
	Taxes             *decimal.Decimal `json:"taxes,omitempty"`
	Total             *decimal.Decimal `json:"total,omitempty"`
	DiscountCode      string           `json:"discount_code"`
	DiscountAmount    *decimal.Decimal `json:"discount_amount,omitempty"`
	ShippingMethod    string           `json:"shipping_method"`

	// PlacedAt is the order's creation time in the source system, distinct
	// from the row's own CreatedAt.
	PlacedAt    *time.Time `json:"placed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	PaymentMethod      string           `json:"payment_method"`
	PaymentReference   string           `json:"payment_reference"`
	RefundedAmount     *decimal.Decimal `json:"refunded_amount,omitempty"`
	Vendor             string           `json:"vendor"`
	OutstandingBalance *decimal.Decimal `json:"outstanding_balance,omitempty"`
	Employee           string           `json:"employee"`
	Location           string           `json:"location"`
	DeviceID           string           `json:"device_id"`
	Tags               string           `json:"tags"`
	RiskLevel          string           `json:"risk_level"`
	Source             string           `json:"source"`
	Phone              string           `json:"phone"`
	ReceiptNumber      string           `json:"receipt_number"`
	Duties             *decimal.Decimal `json:"duties,omitempty"`

	Billing         Address `json:"billing"`
	ShippingAddress Address `json:"shipping_address"`

	PaymentID        string     `json:"payment_id"`
	PaymentTermsName string     `json:"payment_terms_name"`
	NextPaymentDueAt *time.Time `json:"next_payment_due_at,omitempty"`
	PaymentRefs      string     `json:"payment_references"`
}

// LineItem is one product line within an order. OrderID is the zero UUID until
// phase-1 order writes complete and identifiers are resolved.
type LineItem struct {
	shared.BaseEntity
	OrderID uuid.UUID `json:"order_id"`

	Quantity          decimal.Decimal `json:"quantity"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	CompareAtPrice    decimal.Decimal `json:"compare_at_price"`
	SKU               string          `json:"sku"`
	RequiresShipping  string          `json:"requires_shipping"`
	Taxable           string          `json:"taxable"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	Discount          decimal.Decimal `json:"discount"`
	VariantID         string          `json:"variant_id"`
}

// HasOwner reports whether the line item has been linked to a persisted order
func (li *LineItem) HasOwner() bool {
	return li.OrderID != uuid.Nil
}
