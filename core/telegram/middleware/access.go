package middleware

import tele "gopkg.in/telebot.v4"

// OperatorOptions defines how operator-only checks should behave.
type OperatorOptions struct {
	OperatorID int64
	OnReject   tele.HandlerFunc
}

// WithOperatorCheck wraps a command handler enforcing operator-only execution when required.
func WithOperatorCheck(opts OperatorOptions, cmd struct {
	OperatorOnly bool
	Handler      tele.HandlerFunc
}) tele.HandlerFunc {
	if !cmd.OperatorOnly || opts.OperatorID == 0 {
		return cmd.Handler
	}
	return func(c tele.Context) error {
		if int64(c.Sender().ID) != opts.OperatorID {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return cmd.Handler(c)
	}
}

// OperatorOnlyMiddleware ensures that only the operator can invoke downstream handlers.
func OperatorOnlyMiddleware(opts OperatorOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.OperatorID != 0 && int64(c.Sender().ID) != opts.OperatorID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
