package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity. Monetary
// columns are nullable because the sanitizer maps blank or garbage cells to
// nil rather than zero.
type OrderModel struct {
	BaseModel
	// external_order_id is deliberately not unique within an upload: distinct
	// order names can share one source Id cell, and resolution keeps the first
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_orders_scope,priority:1;index:idx_orders_user_placed,priority:1"`
	UploadID        uuid.UUID `gorm:"type:uuid;not null;index:idx_orders_scope,priority:2"`
	ExternalOrderID string    `gorm:"type:varchar(255);not null;index"`

	Name              string `gorm:"type:varchar(255);not null"`
	Email             string `gorm:"type:varchar(255);not null"`
	FinancialStatus   string `gorm:"type:varchar(50)"`
	PaidAt            *time.Time
	FulfillmentStatus string `gorm:"type:varchar(50)"`
	FulfilledAt       *time.Time
	AcceptsMarketing  string           `gorm:"type:varchar(20)"`
	Currency          string           `gorm:"type:varchar(10)"`
	Subtotal          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Shipping          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Taxes             *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Total             *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountCode      string           `gorm:"type:varchar(255)"`
	DiscountAmount    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ShippingMethod    string           `gorm:"type:varchar(255)"`

	PlacedAt    *time.Time `gorm:"index:idx_orders_user_placed,priority:2"`
	CancelledAt *time.Time

	PaymentMethod      string `gorm:"type:varchar(255)"`
	PaymentReference   string `gorm:"type:varchar(255)"`
	RefundedAmount     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Vendor             string           `gorm:"type:varchar(255)"`
	OutstandingBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Employee           string           `gorm:"type:varchar(255)"`
	Location           string           `gorm:"type:varchar(255)"`
	DeviceID           string           `gorm:"type:varchar(255)"`
	Tags               string           `gorm:"type:text"`
	RiskLevel          string           `gorm:"type:varchar(50)"`
	Source             string           `gorm:"type:varchar(255)"`
	Phone              string           `gorm:"type:varchar(50)"`
	ReceiptNumber      string           `gorm:"type:varchar(255)"`
	Duties             *decimal.Decimal `gorm:"type:decimal(12,2)"`

	BillingName         string `gorm:"type:varchar(255)"`
	BillingStreet       string `gorm:"type:varchar(255)"`
	BillingAddress1     string `gorm:"type:varchar(255)"`
	BillingAddress2     string `gorm:"type:varchar(255)"`
	BillingCompany      string `gorm:"type:varchar(255)"`
	BillingCity         string `gorm:"type:varchar(255)"`
	BillingZip          string `gorm:"type:varchar(50)"`
	BillingProvince     string `gorm:"type:varchar(100)"`
	BillingProvinceName string `gorm:"type:varchar(255)"`
	BillingCountry      string `gorm:"type:varchar(100)"`
	BillingPhone        string `gorm:"type:varchar(50)"`

	ShippingName         string `gorm:"type:varchar(255)"`
	ShippingStreet       string `gorm:"type:varchar(255)"`
	ShippingAddress1     string `gorm:"type:varchar(255)"`
	ShippingAddress2     string `gorm:"type:varchar(255)"`
	ShippingCompany      string `gorm:"type:varchar(255)"`
	ShippingCity         string `gorm:"type:varchar(255);index"`
	ShippingZip          string `gorm:"type:varchar(50)"`
	ShippingProvince     string `gorm:"type:varchar(100)"`
	ShippingProvinceName string `gorm:"type:varchar(255)"`
	ShippingCountry      string `gorm:"type:varchar(100)"`
	ShippingPhone        string `gorm:"type:varchar(50)"`

	PaymentID        string `gorm:"type:varchar(255)"`
	PaymentTermsName string `gorm:"type:varchar(255)"`
	NextPaymentDueAt *time.Time
	PaymentRefs      string `gorm:"column:payment_references;type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *ingest.Order {
	return &ingest.Order{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		UploadID:        m.UploadID,
		ExternalOrderID: m.ExternalOrderID,

		Name:              m.Name,
		Email:             m.Email,
		FinancialStatus:   m.FinancialStatus,
		PaidAt:            m.PaidAt,
		FulfillmentStatus: m.FulfillmentStatus,
		FulfilledAt:       m.FulfilledAt,
		AcceptsMarketing:  m.AcceptsMarketing,
		Currency:          m.Currency,
		Subtotal:          m.Subtotal,
		Shipping:          m.Shipping,
		Taxes:             m.Taxes,
		Total:             m.Total,
		DiscountCode:      m.DiscountCode,
		DiscountAmount:    m.DiscountAmount,
		ShippingMethod:    m.ShippingMethod,

		PlacedAt:    m.PlacedAt,
		CancelledAt: m.CancelledAt,

		PaymentMethod:      m.PaymentMethod,
		PaymentReference:   m.PaymentReference,
		RefundedAmount:     m.RefundedAmount,
		Vendor:             m.Vendor,
		OutstandingBalance: m.OutstandingBalance,
		Employee:           m.Employee,
		Location:           m.Location,
		DeviceID:           m.DeviceID,
		Tags:               m.Tags,
		RiskLevel:          m.RiskLevel,
		Source:             m.Source,
		Phone:              m.Phone,
		ReceiptNumber:      m.ReceiptNumber,
		Duties:             m.Duties,

		Billing: ingest.Address{
			Name:         m.BillingName,
			Street:       m.BillingStreet,
			Address1:     m.BillingAddress1,
			Address2:     m.BillingAddress2,
			Company:      m.BillingCompany,
			City:         m.BillingCity,
			Zip:          m.BillingZip,
			Province:     m.BillingProvince,
			ProvinceName: m.BillingProvinceName,
			Country:      m.BillingCountry,
			Phone:        m.BillingPhone,
		},
		ShippingAddress: ingest.Address{
			Name:         m.ShippingName,
			Street:       m.ShippingStreet,
			Address1:     m.ShippingAddress1,
			Address2:     m.ShippingAddress2,
			Company:      m.ShippingCompany,
			City:         m.ShippingCity,
			Zip:          m.ShippingZip,
			Province:     m.ShippingProvince,
			ProvinceName: m.ShippingProvinceName,
			Country:      m.ShippingCountry,
			Phone:        m.ShippingPhone,
		},

		PaymentID:        m.PaymentID,
		PaymentTermsName: m.PaymentTermsName,
		NextPaymentDueAt: m.NextPaymentDueAt,
		PaymentRefs:      m.PaymentRefs,
	}
}

// OrderModelFromDomain converts a domain Order entity to its persistence model.
func OrderModelFromDomain(o *ingest.Order) *OrderModel {
	model := &OrderModel{
		UserID:          o.UserID,
		UploadID:        o.UploadID,
		ExternalOrderID: o.ExternalOrderID,

		Name:              o.Name,
		Email:             o.Email,
		FinancialStatus:   o.FinancialStatus,
		PaidAt:            o.PaidAt,
		FulfillmentStatus: o.FulfillmentStatus,
		FulfilledAt:       o.FulfilledAt,
		AcceptsMarketing:  o.AcceptsMarketing,
		Currency:          o.Currency,
		Subtotal:          o.Subtotal,
		Shipping:          o.Shipping,
		Taxes:             o.Taxes,
		Total:             o.Total,
		DiscountCode:      o.DiscountCode,
		DiscountAmount:    o.DiscountAmount,
		ShippingMethod:    o.ShippingMethod,

		PlacedAt:    o.PlacedAt,
		CancelledAt: o.CancelledAt,

		PaymentMethod:      o.PaymentMethod,
		PaymentReference:   o.PaymentReference,
		RefundedAmount:     o.RefundedAmount,
		Vendor:             o.Vendor,
		OutstandingBalance: o.OutstandingBalance,
		Employee:           o.Employee,
		Location:           o.Location,
		DeviceID:           o.DeviceID,
		Tags:               o.Tags,
		RiskLevel:          o.RiskLevel,
		Source:             o.Source,
		Phone:              o.Phone,
		ReceiptNumber:      o.ReceiptNumber,
		Duties:             o.Duties,

		BillingName:         o.Billing.Name,
		BillingStreet:       o.Billing.Street,
		BillingAddress1:     o.Billing.Address1,
		BillingAddress2:     o.Billing.Address2,
		BillingCompany:      o.Billing.Company,
		BillingCity:         o.Billing.City,
		BillingZip:          o.Billing.Zip,
		BillingProvince:     o.Billing.Province,
		BillingProvinceName: o.Billing.ProvinceName,
		BillingCountry:      o.Billing.Country,
		BillingPhone:        o.Billing.Phone,

		ShippingName:         o.ShippingAddress.Name,
		ShippingStreet:       o.ShippingAddress.Street,
		ShippingAddress1:     o.ShippingAddress.Address1,
		ShippingAddress2:     o.ShippingAddress.Address2,
		ShippingCompany:      o.ShippingAddress.Company,
		ShippingCity:         o.ShippingAddress.City,
		ShippingZip:          o.ShippingAddress.Zip,
		ShippingProvince:     o.ShippingAddress.Province,
		ShippingProvinceName: o.ShippingAddress.ProvinceName,
		ShippingCountry:      o.ShippingAddress.Country,
		ShippingPhone:        o.ShippingAddress.Phone,

		PaymentID:        o.PaymentID,
		PaymentTermsName: o.PaymentTermsName,
		NextPaymentDueAt: o.NextPaymentDueAt,
		PaymentRefs:      o.PaymentRefs,
	}
	model.FromDomainBaseEntity(o.BaseEntity)
	return model
}

// LineItemModel is the persistence model for the LineItem domain entity.
type LineItemModel struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`

	Quantity          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Name              string          `gorm:"type:varchar(255)"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CompareAtPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SKU               string          `gorm:"type:varchar(255)"`
	RequiresShipping  string          `gorm:"type:varchar(20)"`
	Taxable           string          `gorm:"type:varchar(20)"`
	FulfillmentStatus string          `gorm:"type:varchar(50)"`
	Discount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	VariantID         string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem entity.
func (m *LineItemModel) ToDomain() *ingest.LineItem {
	return &ingest.LineItem{
		BaseEntity:        m.BaseModel.ToDomain(),
		OrderID:           m.OrderID,
		Quantity:          m.Quantity,
		Name:              m.Name,
		Price:             m.Price,
		CompareAtPrice:    m.CompareAtPrice,
		SKU:               m.SKU,
		RequiresShipping:  m.RequiresShipping,
		Taxable:           m.Taxable,
		FulfillmentStatus: m.FulfillmentStatus,
		Discount:          m.Discount,
		VariantID:         m.VariantID,
	}
}

// LineItemModelFromDomain converts a domain LineItem entity to its persistence model.
func LineItemModelFromDomain(li *ingest.LineItem) *LineItemModel {
	model := &LineItemModel{
		OrderID:           li.OrderID,
		Quantity:          li.Quantity,
		Name:              li.Name,
		Price:             li.Price,
		CompareAtPrice:    li.CompareAtPrice,
		SKU:               li.SKU,
		RequiresShipping:  li.RequiresShipping,
		Taxable:           li.Taxable,
		FulfillmentStatus: li.FulfillmentStatus,
		Discount:          li.Discount,
		VariantID:         li.VariantID,
	}
	model.FromDomainBaseEntity(li.BaseEntity)
	return model
}
