package app

import (
	"log/slog"

	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/pricing"
	"github.com/amirasaad/remitquote/pkg/provider"
	quotesvc "github.com/amirasaad/remitquote/pkg/service/quote"
)

// Deps contains the infrastructure the services are built from.
type Deps struct {
	CurrencyRegistry *currency.Registry
	Pricing          *pricing.Table
	Rates            provider.RateCache
	Logger           *slog.Logger
}

type App struct {
	Deps         *Deps
	Config       *config.App
	QuoteService *quotesvc.Service
}

func New(deps *Deps, cfg *config.App, opts ...quotesvc.Option) *App {
	opts = append([]quotesvc.Option{quotesvc.WithVolumeThreshold(cfg.Quote.VolumeThreshold)}, opts...)
	return &App{
		Deps:   deps,
		Config: cfg,
		QuoteService: quotesvc.New(
			deps.Rates,
			deps.Pricing,
			deps.CurrencyRegistry,
			deps.Logger,
			opts...,
		),
	}
}
