package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/bootstrap"
	tg "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/core/telegram/sender"
	"github.com/m3rciful/shopbot/internal/bot"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/dialog"
	"github.com/m3rciful/shopbot/internal/jobs"
	"github.com/m3rciful/shopbot/internal/ledger"
	"github.com/m3rciful/shopbot/internal/notify"
	"github.com/m3rciful/shopbot/internal/orders"
)

// App owns the wired services and produces the Telegram run options.
type App struct {
	cfg        *Config
	db         *sqlx.DB
	dispatcher *sender.Dispatcher
	dialogs    *dialog.Manager
	notifier   *notify.Operator
	handlers   *bot.Handlers
	scheduler  *jobs.Scheduler
}

// New bootstraps infrastructure and wires the domain services.
func New(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	dispatcher := sender.NewDispatcher(sender.Options{})
	dialogs := dialog.NewManager()
	store := ledger.NewStore(res.DB)
	cat := catalog.New(cfg.Shop.Products)
	notifier := notify.NewOperator(cfg.Core.Telegram.OperatorChatID, cfg.Shop.Currency, dispatcher)
	svc := orders.NewService(store, cat, notifier, cfg.Shop.StartBalance)
	handlers := bot.NewHandlers(svc, dialogs, cfg.Shop.Currency)

	scheduler, err := jobs.New(jobs.Options{
		Dialogs:    dialogs,
		DialogTTL:  time.Duration(cfg.Shop.DialogTTLMinutes) * time.Minute,
		SweepSpec:  cfg.Shop.SweepSpec,
		Orders:     svc,
		Notifier:   notifier,
		DigestSpec: cfg.Shop.DigestSpec,
	})
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: scheduler init failed: %w", err)
	}

	return &App{
		cfg:        cfg,
		db:         res.DB,
		dispatcher: dispatcher,
		dialogs:    dialogs,
		notifier:   notifier,
		handlers:   handlers,
		scheduler:  scheduler,
	}, nil
}

// TelegramRunOptions assembles registry, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return tg.RunOptions{}, fmt.Errorf("app: handler registration failed: %w", err)
	}

	operatorID := a.cfg.Core.Telegram.OperatorChatID
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		OperatorID: operatorID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(a.handlers, reg, router.TextOptions{}))

	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.notifier.Bind(rt.Bot)
			a.scheduler.Start()
			return nil
		},
		OnStop: func(_ context.Context, _ tg.Runtime) error {
			a.scheduler.Stop()
			return a.db.Close()
		},
	}, nil
}
