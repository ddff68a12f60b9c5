package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/ledger"
)

func TestMainMenuHasFourActions(t *testing.T) {
	markup := mainMenuMarkup()
	require.Len(t, markup.InlineKeyboard, 4)
	assert.Equal(t, cbSetPhone, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, cbNewOrder, markup.InlineKeyboard[1][0].Unique)
	assert.Equal(t, cbViewProfile, markup.InlineKeyboard[2][0].Unique)
	assert.Equal(t, cbViewBalance, markup.InlineKeyboard[3][0].Unique)
}

func TestProductMenuCarriesProductIDs(t *testing.T) {
	markup := productMenuMarkup(catalog.Defaults(), "₽")
	require.Len(t, markup.InlineKeyboard, 3)

	first := markup.InlineKeyboard[0][0]
	assert.Contains(t, first.Text, "(500₽)")
	assert.Equal(t, cbSelect, first.Unique)
	assert.Equal(t, "1", first.Data)
}

func TestReceiptMarkupTargetsOrder(t *testing.T) {
	markup := receiptMarkup("ord-123")
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, cbConfirm, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "ord-123", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, cbCancel, markup.InlineKeyboard[1][0].Unique)
	assert.Equal(t, "ord-123", markup.InlineKeyboard[1][0].Data)
}

func TestRenderProfileFallsBackWhenPhoneMissing(t *testing.T) {
	text := renderProfile("", 1000, 0, "₽")
	assert.Contains(t, text, "not set")
	assert.Contains(t, text, "1000₽")
}

func TestRenderReceipt(t *testing.T) {
	order := ledger.Order{
		ID:           "ord-1",
		ProductName:  "🚗 Toy 2",
		ProductPrice: 300,
		Address:      "PO Box 9",
		Comment:      "leave at door",
	}
	text := renderReceipt(order, "+1555000", "700₽", "₽")
	assert.Contains(t, text, "🚗 Toy 2")
	assert.Contains(t, text, "+1555000")
	assert.Contains(t, text, "300₽")
	assert.Contains(t, text, "700₽")
	assert.Contains(t, text, "ord-1")
}
