package bot

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	"github.com/m3rciful/shopbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/internal/dialog"
	"github.com/m3rciful/shopbot/internal/orders"
)

// Handlers binds the ordering service and dialog manager to Telegram updates.
type Handlers struct {
	svc      *orders.Service
	dialogs  *dialog.Manager
	currency string
}

// NewHandlers builds the handler set.
func NewHandlers(svc *orders.Service, dialogs *dialog.Manager, currency string) *Handlers {
	return &Handlers{svc: svc, dialogs: dialogs, currency: currency}
}

// Register wires commands, callbacks and the text fallback into the registry.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/pending", commands.Command{
		Handler:      h.Pending,
		Description:  "Count orders awaiting confirmation",
		OperatorOnly: true,
		Hidden:       true,
	})

	cbs := map[string]tele.HandlerFunc{
		cbSetPhone:    h.SetPhone,
		cbNewOrder:    h.NewOrder,
		cbViewProfile: h.ViewProfile,
		cbViewBalance: h.ViewBalance,
		cbMainMenu:    h.MainMenu,
		cbSelect:      h.SelectProduct,
		cbConfirm:     h.ConfirmOrder,
		cbCancel:      h.CancelOrder,
	}
	for key, fn := range cbs {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return err
		}
	}

	reg.SetTextFallback(h.UnexpectedInput)
	reg.SetCallbackNotFound(h.UnexpectedInput)
	return nil
}

// InProgress reports whether the chat has an active dialog step.
func (h *Handlers) InProgress(chatID int64) bool {
	return h.dialogs.InProgress(chatID)
}

// Start creates the account on first contact and shows the main menu.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := h.svc.Register(ctx, c.Sender().ID); err != nil {
		return err
	}
	return tghelpers.SendMD(c, textWelcome, mainMenuMarkup())
}

// MainMenu re-renders the main menu from the inline back button.
func (h *Handlers) MainMenu(c tele.Context) error {
	h.dialogs.Reset(c.Chat().ID)
	return tghelpers.EditOrSendMD(c, textWelcome, mainMenuMarkup())
}

// SetPhone prompts for the phone number and opens the phone step.
func (h *Handlers) SetPhone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := h.svc.Register(ctx, c.Sender().ID); err != nil {
		return err
	}
	h.dialogs.SetStep(c.Chat().ID, dialog.StepPhone)
	return tghelpers.SendMD(c, textPhonePrompt)
}

// NewOrder shows the product menu, or rejects when no phone is on file.
func (h *Handlers) NewOrder(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	products, err := h.svc.StartOrder(ctx, c.Sender().ID)
	if errors.Is(err, orders.ErrMissingPhone) {
		return tghelpers.SendMD(c, textMissingPhone)
	}
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, textChooseProduct, productMenuMarkup(products, h.currency))
}

// SelectProduct stores the chosen product and asks for the address.
func (h *Handlers) SelectProduct(c tele.Context) error {
	id, err := callbacks.PayloadInt(c)
	if err != nil {
		return tghelpers.SendMD(c, textUnexpectedInput)
	}
	product, err := h.svc.Product(id)
	if errors.Is(err, orders.ErrProductNotFound) {
		return tghelpers.SendMD(c, textUnexpectedInput)
	}
	if err != nil {
		return err
	}

	chatID := c.Chat().ID
	h.dialogs.SelectProduct(chatID, product)
	h.dialogs.SetStep(chatID, dialog.StepAddress)
	return tghelpers.SendMD(c, textAddressPrompt)
}

// ViewProfile renders phone, balance and order count.
func (h *Handlers) ViewProfile(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	profile, err := h.svc.Profile(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	text := renderProfile(profile.Phone, profile.Balance, profile.Orders, h.currency)
	return tghelpers.SendMD(c, text, backToMenuMarkup())
}

// ViewBalance renders the current balance.
func (h *Handlers) ViewBalance(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	balance, err := h.svc.Balance(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, renderBalance(balance, h.currency), backToMenuMarkup())
}

// ConfirmOrder moves the order to CONFIRMED and notifies the operator.
func (h *Handlers) ConfirmOrder(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orderID := callbacks.CallbackPayload(c)
	_, err := h.svc.Confirm(ctx, c.Sender().ID, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) || errors.Is(err, orders.ErrOrderClosed) {
		return tghelpers.SendText(c, textOrderNotFound)
	}
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, textOrderConfirmed, backToMenuMarkup())
}

// CancelOrder moves the order to CANCELLED.
func (h *Handlers) CancelOrder(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orderID := callbacks.CallbackPayload(c)
	_, err := h.svc.Cancel(ctx, c.Sender().ID, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) || errors.Is(err, orders.ErrOrderClosed) {
		return tghelpers.SendText(c, textOrderNotFound)
	}
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, textOrderCancelled, backToMenuMarkup())
}

// Pending reports the number of pending orders. Operator command.
func (h *Handlers) Pending(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	n, err := h.svc.PendingCount(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, fmt.Sprintf("📋 *Pending orders:* %d", n))
}

// UnexpectedInput is the fallback for text or callbacks outside any flow.
func (h *Handlers) UnexpectedInput(c tele.Context) error {
	return tghelpers.SendText(c, textUnexpectedInput)
}

// StepHandler consumes a text message for the chat's active dialog step.
func (h *Handlers) StepHandler(c tele.Context) error {
	chatID := c.Chat().ID
	switch h.dialogs.Step(chatID) {
	case dialog.StepPhone:
		return h.stepPhone(c)
	case dialog.StepAddress:
		return h.stepAddress(c)
	case dialog.StepComment:
		return h.stepComment(c)
	default:
		return h.UnexpectedInput(c)
	}
}

func (h *Handlers) stepPhone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	err := h.svc.SetPhone(ctx, c.Sender().ID, c.Text())
	if errors.Is(err, orders.ErrInvalidPhone) {
		// Stay in the phone step and let the user retry.
		return tghelpers.SendMD(c, textPhoneInvalid)
	}
	if err != nil {
		return err
	}
	h.dialogs.Reset(c.Chat().ID)
	return tghelpers.SendMD(c, textPhoneSaved)
}

func (h *Handlers) stepAddress(c tele.Context) error {
	chatID := c.Chat().ID
	h.dialogs.SetAddress(chatID, c.Text())
	h.dialogs.SetStep(chatID, dialog.StepComment)
	return tghelpers.SendMD(c, textCommentPrompt)
}

func (h *Handlers) stepComment(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	chatID := c.Chat().ID

	draft, ok := h.dialogs.Draft(chatID)
	if !ok || !draft.HasProduct {
		h.dialogs.Reset(chatID)
		return tghelpers.SendText(c, textUnexpectedInput)
	}

	receipt, err := h.svc.Finalize(ctx, c.Sender().ID, draft.Product, draft.Address, c.Text())
	if err != nil {
		h.dialogs.Reset(chatID)
		return err
	}
	h.dialogs.Reset(chatID)

	remaining := textInsufficientFunds
	if receipt.Funded {
		remaining = fmt.Sprintf("%d%s", receipt.Remaining, h.currency)
	}
	text := renderReceipt(receipt.Order, receipt.Phone, remaining, h.currency)
	return tghelpers.SendMD(c, text, receiptMarkup(receipt.Order.ID))
}
