package ingestapp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/infrastructure/orderfile"
)

// Column labels that establish order identity in the export
const (
	colOrderName = "Name"
	colOrderID   = "Id"
)

// Placeholders for required text fields, so drafts satisfy non-null
// persistence constraints even on malformed rows.
const (
	placeholderOrderName = "Unnamed Order"
	placeholderEmail     = "missing@example.com"
)

// orderTextColumns maps export column labels to order text fields with their
// defaults. The table is the single source of truth for the row layout.
var orderTextColumns = []struct {
	label string
	def   string
	field func(*ingest.Order) *string
}{
	{"Financial Status", "", func(o *ingest.Order) *string { return &o.FinancialStatus }},
	{"Fulfillment Status", "", func(o *ingest.Order) *string { return &o.FulfillmentStatus }},
	{"Accepts Marketing", "", func(o *ingest.Order) *string { return &o.AcceptsMarketing }},
	{"Currency", "", func(o *ingest.Order) *string { return &o.Currency }},
	{"Discount Code", "", func(o *ingest.Order) *string { return &o.DiscountCode }},
	{"Shipping Method", "", func(o *ingest.Order) *string { return &o.ShippingMethod }},
	{"Payment Method", "", func(o *ingest.Order) *string { return &o.PaymentMethod }},
	{"Payment Reference", "", func(o *ingest.Order) *string { return &o.PaymentReference }},
	{"Vendor", "", func(o *ingest.Order) *string { return &o.Vendor }},
	{"Employee", "", func(o *ingest.Order) *string { return &o.Employee }},
	{"Location", "", func(o *ingest.Order) *string { return &o.Location }},
	{"Device ID", "", func(o *ingest.Order) *string { return &o.DeviceID }},
	{"Tags", "", func(o *ingest.Order) *string { return &o.Tags }},
	{"Risk Level", "", func(o *ingest.Order) *string { return &o.RiskLevel }},
	{"Source", "", func(o *ingest.Order) *string { return &o.Source }},
	{"Phone", "", func(o *ingest.Order) *string { return &o.Phone }},
	{"Receipt Number", "", func(o *ingest.Order) *string { return &o.ReceiptNumber }},
	{"Billing Name", "", func(o *ingest.Order) *string { return &o.Billing.Name }},
	{"Billing Street", "", func(o *ingest.Order) *string { return &o.Billing.Street }},
	{"Billing Address1", "", func(o *ingest.Order) *string { return &o.Billing.Address1 }},
	{"Billing Address2", "", func(o *ingest.Order) *string { return &o.Billing.Address2 }},
	{"Billing Company", "", func(o *ingest.Order) *string { return &o.Billing.Company }},
	{"Billing City", "", func(o *ingest.Order) *string { return &o.Billing.City }},
	{"Billing Zip", "", func(o *ingest.Order) *string { return &o.Billing.Zip }},
	{"Billing Province", "", func(o *ingest.Order) *string { return &o.Billing.Province }},
	{"Billing Province Name", "", func(o *ingest.Order) *string { return &o.Billing.ProvinceName }},
	{"Billing Country", "", func(o *ingest.Order) *string { return &o.Billing.Country }},
	{"Billing Phone", "", func(o *ingest.Order) *string { return &o.Billing.Phone }},
	{"Shipping Name", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Name }},
	{"Shipping Street", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Street }},
	{"Shipping Address1", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Address1 }},
	{"Shipping Address2", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Address2 }},
	{"Shipping Company", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Company }},
	{"Shipping City", "", func(o *ingest.Order) *string { return &o.ShippingAddress.City }},
	{"Shipping Zip", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Zip }},
	{"Shipping Province", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Province }},
	{"Shipping Province Name", "", func(o *ingest.Order) *string { return &o.ShippingAddress.ProvinceName }},
	{"Shipping Country", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Country }},
	{"Shipping Phone", "", func(o *ingest.Order) *string { return &o.ShippingAddress.Phone }},
	{"Payment ID", "", func(o *ingest.Order) *string { return &o.PaymentID }},
	{"Payment Terms Name", "", func(o *ingest.Order) *string { return &o.PaymentTermsName }},
	{"Payment References", "", func(o *ingest.Order) *string { return &o.PaymentRefs }},
}

// orderAmountColumns maps export columns to nullable monetary fields
var orderAmountColumns = []struct {
	label string
	field func(*ingest.Order) **decimal.Decimal
}{
	{"Subtotal", func(o *ingest.Order) **decimal.Decimal { return &o.Subtotal }},
	{"Shipping", func(o *ingest.Order) **decimal.Decimal { return &o.Shipping }},
	{"Taxes", func(o *ingest.Order) **decimal.Decimal { return &o.Taxes }},
	{"Total", func(o *ingest.Order) **decimal.Decimal { return &o.Total }},
	{"Discount Amount", func(o *ingest.Order) **decimal.Decimal { return &o.DiscountAmount }},
	{"Refunded Amount", func(o *ingest.Order) **decimal.Decimal { return &o.RefundedAmount }},
	{"Outstanding Balance", func(o *ingest.Order) **decimal.Decimal { return &o.OutstandingBalance }},
	{"Duties", func(o *ingest.Order) **decimal.Decimal { return &o.Duties }},
}

// orderTimeColumns maps export columns to nullable timestamp fields
var orderTimeColumns = []struct {
	label string
	field func(*ingest.Order) **time.Time
}{
	{"Paid at", func(o *ingest.Order) **time.Time { return &o.PaidAt }},
	{"Fulfilled at", func(o *ingest.Order) **time.Time { return &o.FulfilledAt }},
	{"Created at", func(o *ingest.Order) **time.Time { return &o.PlacedAt }},
	{"Cancelled at", func(o *ingest.Order) **time.Time { return &o.CancelledAt }},
	{"Next Payment Due At", func(o *ingest.Order) **time.Time { return &o.NextPaymentDueAt }},
}

// RowMapper converts raw export rows into order and line-item drafts for one
// ingestion run.
type RowMapper struct {
	userID   uuid.UUID
	uploadID uuid.UUID
}

// NewRowMapper creates a row mapper scoped to one (user, upload) run
func NewRowMapper(userID, uploadID uuid.UUID) *RowMapper {
	return &RowMapper{userID: userID, uploadID: uploadID}
}

// OrderKey derives the grouping key for a row: the order-name column when
// present, else the order-id column, else a positional fallback. Every row
// maps to some key; unidentifiable rows become single-line-item orders rather
// than being dropped.
func (m *RowMapper) OrderKey(row *orderfile.Row) string {
	if name := row.Get(colOrderName); name != "" {
		return name
	}
	if id := row.Get(colOrderID); id != "" {
		return id
	}
	return fmt.Sprintf("unknown_%d", row.Index)
}

// MapOrder builds an order draft from a row's order-level columns
func (m *RowMapper) MapOrder(row *orderfile.Row) *ingest.Order {
	order := &ingest.Order{
		UserID:          m.userID,
		UploadID:        m.uploadID,
		ExternalOrderID: row.GetOrDefault(colOrderID, row.Get(colOrderName)),
		Name:            row.GetOrDefault(colOrderName, placeholderOrderName),
		Email:           row.GetOrDefault("Email", placeholderEmail),
	}

	for _, col := range orderTextColumns {
		*col.field(order) = row.GetOrDefault(col.label, col.def)
	}
	for _, col := range orderAmountColumns {
		*col.field(order) = Amount(row.Get(col.label))
	}
	for _, col := range orderTimeColumns {
		*col.field(order) = Timestamp(row.Get(col.label))
	}

	return order
}

// MapLineItem builds a line-item draft from a row. The second return is false
// when the row's price or quantity is non-blank but unparseable; such rows are
// counted as processed but contribute no line item, so invalid monetary data
// never reaches storage.
func (m *RowMapper) MapLineItem(row *orderfile.Row) (*ingest.LineItem, bool) {
	price, priceOK := AmountOrDefault(row.Get("Lineitem price"), decimal.Zero)
	quantity, quantityOK := AmountOrDefault(row.Get("Lineitem quantity"), decimal.Zero)
	if !priceOK || !quantityOK {
		return nil, false
	}

	compareAt, _ := AmountOrDefault(row.Get("Lineitem compare at price"), decimal.Zero)
	discount, _ := AmountOrDefault(row.Get("Lineitem discount"), decimal.Zero)

	return &ingest.LineItem{
		Quantity:          quantity,
		Name:              row.Get("Lineitem name"),
		Price:             price,
		CompareAtPrice:    compareAt,
		SKU:               row.Get("Lineitem sku"),
		RequiresShipping:  row.Get("Lineitem requires shipping"),
		Taxable:           row.Get("Lineitem taxable"),
		FulfillmentStatus: row.Get("Lineitem fulfillment status"),
		Discount:          discount,
		VariantID:         row.Get("Lineitem sku"),
	}, true
}
