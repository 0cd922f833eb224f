package ingestapp

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ordersight/backend/internal/infrastructure/orderfile"
)

func newRow(index int, data map[string]string) *orderfile.Row {
	return &orderfile.Row{Index: index, LineNumber: index + 2, Data: data}
}

func TestOrderKey(t *testing.T) {
	mapper := NewRowMapper(uuid.New(), uuid.New())

	t.Run("Name column wins", func(t *testing.T) {
		row := newRow(0, map[string]string{"Name": "#1001", "Id": "9001"})
		assert.Equal(t, "#1001", mapper.OrderKey(row))
	})

	t.Run("Falls back to Id", func(t *testing.T) {
		row := newRow(0, map[string]string{"Name": "", "Id": "9001"})
		assert.Equal(t, "9001", mapper.OrderKey(row))
	})

	t.Run("Synthetic key for unidentifiable rows", func(t *testing.T) {
		row := newRow(7, map[string]string{"Name": "", "Id": ""})
		assert.Equal(t, "unknown_7", mapper.OrderKey(row))
	})
}

func TestMapOrder(t *testing.T) {
	userID := uuid.New()
	uploadID := uuid.New()
	mapper := NewRowMapper(userID, uploadID)

	t.Run("Full row", func(t *testing.T) {
		order := mapper.MapOrder(newRow(0, map[string]string{
			"Name":            "#1001",
			"Id":              "9001",
			"Email":           "buyer@example.com",
			"Currency":        "USD",
			"Subtotal":        "90.00",
			"Total":           "100.00",
			"Taxes":           "10.00",
			"Created at":      "2021-01-19 12:00:00 -0500",
			"Shipping City":   "Austin",
			"Billing Country": "US",
		}))

		assert.Equal(t, userID, order.UserID)
		assert.Equal(t, uploadID, order.UploadID)
		assert.Equal(t, "9001", order.ExternalOrderID)
		assert.Equal(t, "#1001", order.Name)
		assert.Equal(t, "buyer@example.com", order.Email)
		assert.Equal(t, "USD", order.Currency)
		require.NotNil(t, order.Total)
		assert.True(t, order.Total.Equal(decimal.NewFromInt(100)))
		require.NotNil(t, order.PlacedAt)
		assert.Equal(t, "Austin", order.ShippingAddress.City)
		assert.Equal(t, "US", order.Billing.Country)
	})

	t.Run("Required fields get placeholders", func(t *testing.T) {
		order := mapper.MapOrder(newRow(0, map[string]string{}))

		assert.Equal(t, "Unnamed Order", order.Name)
		assert.Equal(t, "missing@example.com", order.Email)
		assert.Equal(t, "", order.ExternalOrderID)
	})

	t.Run("External ID prefers Id over Name", func(t *testing.T) {
		withBoth := mapper.MapOrder(newRow(0, map[string]string{"Name": "#1001", "Id": "9001"}))
		assert.Equal(t, "9001", withBoth.ExternalOrderID)

		nameOnly := mapper.MapOrder(newRow(0, map[string]string{"Name": "#1001"}))
		assert.Equal(t, "#1001", nameOnly.ExternalOrderID)
	})

	t.Run("Dirty numeric and date cells become nil", func(t *testing.T) {
		order := mapper.MapOrder(newRow(0, map[string]string{
			"Name":     "#1001",
			"Total":    "N/A",
			"Paid at":  "never",
			"Subtotal": "",
		}))

		assert.Nil(t, order.Total)
		assert.Nil(t, order.PaidAt)
		assert.Nil(t, order.Subtotal)
	})
}

func TestMapLineItem(t *testing.T) {
	mapper := NewRowMapper(uuid.New(), uuid.New())

	t.Run("Valid line item", func(t *testing.T) {
		item, ok := mapper.MapLineItem(newRow(0, map[string]string{
			"Lineitem quantity": "2",
			"Lineitem name":     "Blue T-Shirt",
			"Lineitem price":    "25.00",
			"Lineitem sku":      "TS-BLU-M",
			"Lineitem taxable":  "true",
		}))

		require.True(t, ok)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, item.Price.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, "Blue T-Shirt", item.Name)
		assert.Equal(t, "TS-BLU-M", item.SKU)
		assert.Equal(t, "TS-BLU-M", item.VariantID)
		assert.False(t, item.HasOwner())
	})

	t.Run("Blank price and quantity default to zero", func(t *testing.T) {
		item, ok := mapper.MapLineItem(newRow(0, map[string]string{
			"Lineitem name": "Sticker",
		}))

		require.True(t, ok)
		assert.True(t, item.Price.IsZero())
		assert.True(t, item.Quantity.IsZero())
	})

	t.Run("Unparseable price drops the line item", func(t *testing.T) {
		_, ok := mapper.MapLineItem(newRow(0, map[string]string{
			"Lineitem price":    "N/A",
			"Lineitem quantity": "2",
		}))
		assert.False(t, ok)
	})

	t.Run("Unparseable quantity drops the line item", func(t *testing.T) {
		_, ok := mapper.MapLineItem(newRow(0, map[string]string{
			"Lineitem price":    "10.00",
			"Lineitem quantity": "two",
		}))
		assert.False(t, ok)
	})
}
