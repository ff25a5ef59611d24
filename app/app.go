// Package app is the composition root: it builds the API client, the
// stores and the guarded router out of one Config, for an embedding UI
// to hold on to.
package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"homesage_client/api"
	"homesage_client/calendar"
	"homesage_client/config"
	"homesage_client/logging"
	"homesage_client/router"
	"homesage_client/store"
	"homesage_client/tracing"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
	Tracer trace.Tracer

	Client   *api.Client
	Auth     *store.AuthStore
	Sales    *store.SaleStore
	User     *store.UserStore
	Calendar *calendar.Store
	Router   *router.Router

	shutdownTracing func(context.Context) error
}

// New wires the full client layer. The notifier may be nil; blocking
// messages then go to the log.
func New(cfg *config.Config, notifier store.Notifier) (*App, error) {
	logger := logging.Init(cfg.LogLevel, cfg.LogFile)

	tracer, shutdown, err := tracing.Init("homesage_client", cfg.JaegerAddress)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.BackendURL, cfg.RequestTimeout, logger, tracer)
	auth := store.NewAuthStore(client, logger, tracer, notifier)
	sales := store.NewSaleStore(client, logger, tracer)
	user := store.NewUserStore(client, auth, logger, tracer)

	opts := []router.Option{}
	if cfg.StrictGuard {
		opts = append(opts, router.WithStrictGuard())
	}
	if cfg.CasbinModel != "" && cfg.CasbinPolicy != "" {
		enforcer, err := router.LoadEnforcer(cfg.CasbinModel, cfg.CasbinPolicy)
		if err != nil {
			logger.Warnf("App.New : casbin policy not loaded: %s", err)
		} else {
			opts = append(opts, router.WithEnforcer(enforcer))
		}
	}

	var routerNotifier router.Notifier = logNotifier{logger: logger}
	if notifier != nil {
		routerNotifier = notifier
	}

	return &App{
		Config:          cfg,
		Logger:          logger,
		Tracer:          tracer,
		Client:          client,
		Auth:            auth,
		Sales:           sales,
		User:            user,
		Calendar:        calendar.New(),
		Router:          router.New(router.VariantInfo, auth, logger, routerNotifier, opts...),
		shutdownTracing: shutdown,
	}, nil
}

// Start runs the session check the web client performed on load.
func (a *App) Start(ctx context.Context) {
	a.Auth.CheckAuthStatus(ctx)
	if a.Auth.IsAuthenticated() {
		a.Logger.Infof("App.Start : session restored, role=%s", a.Auth.UserRole())
	} else {
		a.Logger.Infoln("App.Start : no active session")
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.shutdownTracing(ctx)
}

type logNotifier struct {
	logger *logrus.Logger
}

func (n logNotifier) Notify(message string) {
	n.logger.Infoln(message)
}
