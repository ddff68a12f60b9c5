package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/ledger"
)

// Callback uniques consumed by the registry. The payload after '|' carries
// the product id or order id where one applies.
const (
	cbSetPhone    = "set_phone"
	cbNewOrder    = "new_order"
	cbViewProfile = "view_profile"
	cbViewBalance = "view_balance"
	cbMainMenu    = "main_menu"
	cbSelect      = "select"
	cbConfirm     = "confirm"
	cbCancel      = "cancel"
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📞 Add phone number", Unique: cbSetPhone},
		{Text: "🛒 Place an order", Unique: cbNewOrder},
		{Text: "👤 Profile", Unique: cbViewProfile},
		{Text: "💰 Balance", Unique: cbViewBalance},
	})
}

func backToMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Main menu", Unique: cbMainMenu},
	})
}

func productMenuMarkup(products []catalog.Product, currency string) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		btns = append(btns, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%s (%d%s)", p.Name, p.Price, currency),
			Unique: cbSelect,
			Data:   fmt.Sprintf("%d", p.ID),
		})
	}
	return keyboard.InlineButtons(btns)
}

func receiptMarkup(orderID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✅ Generate order", Unique: cbConfirm, Data: orderID},
		{Text: "❌ Cancel order", Unique: cbCancel, Data: orderID},
	})
}

func renderProfile(phone string, balance int64, orderCount int, currency string) string {
	if phone == "" {
		phone = "not set"
	}
	return fmt.Sprintf(
		"👤 *Your profile:*\n\n"+
			"📞 *Phone:* %s\n"+
			"💰 *Balance:* %d%s\n"+
			"🛒 *Orders placed:* %d\n\n"+
			"You can go back to the menu or keep shopping.",
		phone, balance, currency, orderCount,
	)
}

func renderBalance(balance int64, currency string) string {
	return fmt.Sprintf("💰 *Your current balance:*\n\n%d%s", balance, currency)
}

func renderReceipt(order ledger.Order, phone, remaining, currency string) string {
	return fmt.Sprintf(
		"🎉 *Your order:*\n\n"+
			"🛍️ *Product:* %s\n"+
			"📞 *Your phone number:* %s\n"+
			"📝 *Your comment:* %s\n"+
			"🏠 *Delivery address:* %s\n"+
			"💵 *Price:* %d%s\n"+
			"💰 *Remaining balance:* %s\n"+
			"🆔 *Order id:* %s\n\n"+
			"What would you like to do?",
		order.ProductName, phone, order.Comment, order.Address,
		order.ProductPrice, currency, remaining, order.ID,
	)
}
