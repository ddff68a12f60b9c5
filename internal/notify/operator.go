package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/sender"
	"github.com/m3rciful/shopbot/internal/orders"
)

const component = "service.notify"

// ErrNotBound is returned when a notification is attempted before the bot
// runtime has been attached via Bind.
var ErrNotBound = errors.New("notify: bot not bound")

// Operator delivers order notifications to the operator chat through the
// asynchronous sender queue. Delivery is best-effort.
type Operator struct {
	chatID   int64
	currency string
	disp     *sender.Dispatcher
	bot      atomic.Pointer[tele.Bot]
}

// NewOperator builds a notifier for the given operator chat.
func NewOperator(chatID int64, currency string, disp *sender.Dispatcher) *Operator {
	return &Operator{chatID: chatID, currency: currency, disp: disp}
}

// Bind attaches the live bot. Called from the runtime OnStart hook.
func (o *Operator) Bind(bot *tele.Bot) {
	o.bot.Store(bot)
}

// OrderConfirmed sends the order summary to the operator chat.
func (o *Operator) OrderConfirmed(ctx context.Context, n orders.Notification) error {
	text := fmt.Sprintf(
		"🎉 *New order:*\n\n"+
			"📞 *Customer phone:* %s\n"+
			"🛍️ *Product:* %s\n"+
			"🏠 *Delivery address:* %s\n"+
			"📝 *Comment:* %s\n"+
			"💵 *Price:* %d%s\n"+
			"🆔 *Order id:* %s",
		n.Phone, n.ProductName, n.Address, n.Comment, n.Price, o.currency, n.OrderID,
	)
	err := o.send(ctx, "notify.order", text)
	if err == nil {
		logger.Info(ctx, component, "operator.notified",
			slog.String("order_id", n.OrderID),
			slog.Int64("chat_id", o.chatID),
		)
	}
	return err
}

// PendingDigest reports the number of orders still awaiting confirmation.
func (o *Operator) PendingDigest(ctx context.Context, pending int) error {
	text := fmt.Sprintf("📋 *Daily digest:* %d order(s) still pending.", pending)
	err := o.send(ctx, "notify.digest", text)
	if err == nil {
		logger.Info(ctx, component, "digest.sent",
			slog.Int("pending_count", pending),
			slog.Int64("chat_id", o.chatID),
		)
	}
	return err
}

func (o *Operator) send(ctx context.Context, action, text string) error {
	if o.chatID == 0 {
		return errors.New("notify: operator chat not configured")
	}
	bot := o.bot.Load()
	if bot == nil {
		return ErrNotBound
	}

	run := func() error {
		_, err := bot.Send(tele.ChatID(o.chatID), text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
		return err
	}
	if o.disp == nil {
		return run()
	}
	if err := o.disp.Enqueue(ctx, action, "sendMessage", run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, component, "queue.fallback",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}
