package bot

const (
	textWelcome = "*👋 Welcome!*\n\n" +
		"I am a bot that helps you:\n" +
		"📞 Add your phone number.\n" +
		"🛒 Place an order.\n" +
		"👤 View your profile.\n" +
		"💰 Check your current balance.\n\n" +
		"Pick an action below:"

	textPhonePrompt = "📞 *Adding a phone number:*\n\n" +
		"Enter your phone number like `+1234567890`.\n" +
		"We use it to reach you about your order."

	textPhoneInvalid = "❌ *Error:*\n\n" +
		"The phone number must start with `+` and contain digits only. Try again."

	textPhoneSaved = "✅ *Phone number saved!*"

	textMissingPhone = "❌ *Error:*\n\n" +
		"Add your phone number first to place an order."

	textChooseProduct = "🛒 *Pick a product to order:*\n\n" +
		"Tap one of the buttons below."

	textAddressPrompt = "🏠 *Enter the delivery address or a post office box:*"

	textCommentPrompt = "📝 *Add a comment to your order:*\n\n" +
		"For example, a convenient delivery time or other details."

	textOrderConfirmed = "✅ *Your order has been sent to the operator!*\n\n" +
		"Thank you for your purchase! You can go back to the menu."

	textOrderCancelled = "❌ *Your order has been cancelled.*\n\n" +
		"You can go back to the menu or start over."

	textOrderNotFound = "❌ Error: order not found."

	textUnexpectedInput = "❌ Unexpected input. Please start over."

	textInsufficientFunds = "insufficient funds"
)
