// Package app wires configuration, storage, integrations and services into
// the dependency set shared by the API server and the worker.
package app

import (
	"context"
	"fmt"

	"finova/internal/advisor"
	"finova/internal/config"
	"finova/internal/database"
	"finova/internal/events"
	"finova/internal/logger"
	"finova/internal/notify"
	"finova/internal/router"
	"finova/internal/services"
	"finova/internal/session"
	"finova/internal/sheets"
)

// App is the assembled application.
type App struct {
	Config *config.Config
	DB     *database.Manager
	Broker *events.Client // nil when AMQP_URL is unset

	Sessions     services.SessionServicer
	Tokens       *session.Manager
	Transactions services.TransactionServicer
	Categories   services.CategoryServicer
	Budgets      services.BudgetServicer
	Goals        services.SavingsGoalServicer
	Investments  services.InvestmentServicer
	Dashboard    services.DashboardServicer
	Advice       services.AdviceServicer
	Export       services.ExportServicer
	Jobs         services.JobRunner
}

// New connects to the database and the optional integrations and builds
// every service. Optional integrations that fail to start are logged and
// left disabled.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Get()

	dbManager, err := database.NewManager(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	db := dbManager.DB()

	a := &App{Config: cfg, DB: dbManager}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		broker, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			_ = dbManager.Close()
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		a.Broker = broker
		publisher = broker
		log.Infow("message broker connected", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Discord.BotToken != "" {
		discord, err := notify.NewDiscord(cfg.Discord.BotToken, cfg.Discord.ChannelID)
		if err != nil {
			log.Warnw("discord notifications disabled", "error", err)
		} else {
			notifier = discord
		}
	}

	var exporter sheets.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		client, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, cfg.Sheets.ServiceAccountFile)
		if err != nil {
			log.Warnw("google sheets export disabled", "error", err)
		} else {
			exporter = client
		}
	}

	var adv advisor.Advisor = advisor.Unconfigured{}
	if cfg.Advisor.APIKey != "" {
		gemini, err := advisor.New(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model, cfg.Advisor.Timeout)
		if err != nil {
			log.Warnw("advisor disabled", "error", err)
		} else {
			adv = gemini
		}
	}

	household := cfg.Members
	a.Tokens = session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	a.Sessions = services.NewSessionService(cfg.Session, household, a.Tokens)
	a.Transactions = services.NewTransactionService(db, household, publisher, cfg.RecurrenceLabelInstallments)
	a.Categories = services.NewCategoryService(db, publisher)
	a.Budgets = services.NewBudgetService(db)
	a.Goals = services.NewSavingsGoalService(db, household)
	a.Investments = services.NewInvestmentService(db, household)
	a.Dashboard = services.NewDashboardService(db)
	a.Advice = services.NewAdviceService(db, adv, household, cfg.CurrencySymbol, publisher, notifier)
	a.Export = services.NewExportService(a.Transactions, exporter)
	a.Jobs = services.NewJobRunner(a.Transactions, a.Advice, household)

	return a, nil
}

// SeedCategories inserts the default categories when none exist yet.
func (a *App) SeedCategories(ctx context.Context) error {
	existing, err := a.Categories.ListCategories(ctx, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	n, err := a.Categories.RestoreDefaults(ctx)
	if err != nil {
		return err
	}
	logger.Get().Infow("seeded default categories", "count", n)
	return nil
}

// RouterDeps returns the HTTP dependency set. Pipeline jobs are queued when
// a broker is connected.
func (a *App) RouterDeps() router.Deps {
	deps := router.Deps{
		Sessions:       a.Sessions,
		Tokens:         a.Tokens,
		Transactions:   a.Transactions,
		Categories:     a.Categories,
		Budgets:        a.Budgets,
		Goals:          a.Goals,
		Investments:    a.Investments,
		Dashboard:      a.Dashboard,
		Advice:         a.Advice,
		Export:         a.Export,
		Jobs:           a.Jobs,
		PipelineAPIKey: a.Config.Pipeline.APIKey,
	}
	if a.Broker != nil {
		deps.Queue = a.Broker
	}
	return deps
}

// Close releases the broker and database connections.
func (a *App) Close() {
	log := logger.Get()
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			log.Warnw("broker close error", "error", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		log.Warnw("database close error", "error", err)
	}
}
