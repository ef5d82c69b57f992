package app

import (
	"context"
	"fmt"

	"github.com/upb/command-gateway/config"
	"github.com/upb/command-gateway/handlers"
	"github.com/upb/command-gateway/middleware"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/repositories/postgres"
	"github.com/upb/command-gateway/services/auth"
	"github.com/upb/command-gateway/services/decision"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection: the database
// handle is created once here and passed explicitly into everything that
// needs it.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Accounts  repositories.AccountRepository
	Rules     repositories.RuleRepository
	AuditLogs repositories.AuditRepository
	TxManager repositories.TransactionManager

	// Services
	AuthService     *auth.Service
	DecisionService *decision.Service

	// HTTP layer
	AuthMiddleware *middleware.AuthMiddleware
	CommandHandler *handlers.CommandHandler
	AccountHandler *handlers.AccountHandler
	RuleHandler    *handlers.RuleHandler
	AuditHandler   *handlers.AuditHandler
	AuthHandler    *handlers.AuthHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices(cfg)
	deps.initHTTP()

	if cfg.Seed.Enabled {
		if err := postgres.Seed(ctx, deps.DB, cfg.Seed.AdminAPIKey, cfg.Seed.MemberAPIKey, logger); err != nil {
			return nil, fmt.Errorf("failed to seed data: %w", err)
		}
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection pool and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Accounts = postgres.NewAccountRepository(d.DB, d.Logger)
	d.Rules = postgres.NewRuleRepository(d.DB, d.Logger)
	d.AuditLogs = postgres.NewAuditRepository(d.DB, d.Logger)
	d.TxManager = postgres.NewTransactionManager(d.DB, d.Logger)

	d.Logger.Info("repositories initialized")
}

// initServices initializes the auth service and the decision pipeline
func (d *Dependencies) initServices(cfg *config.Config) {
	d.AuthService = auth.NewService(d.Accounts, []byte(cfg.Auth.TokenSecret), cfg.Auth.TokenTTL, d.Logger)

	matcher := decision.NewMatcher(d.Logger)
	d.DecisionService = decision.NewService(
		d.Accounts,
		d.Rules,
		d.AuditLogs,
		d.TxManager,
		matcher,
		d.Logger,
	)

	d.Logger.Info("services initialized")
}

// initHTTP initializes middleware and handlers
func (d *Dependencies) initHTTP() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.AuthService, d.Logger)

	d.CommandHandler = handlers.NewCommandHandler(d.DecisionService, d.Logger)
	d.AccountHandler = handlers.NewAccountHandler(d.Accounts, d.AuditLogs, d.Logger)
	d.RuleHandler = handlers.NewRuleHandler(d.Rules, d.Logger)
	d.AuditHandler = handlers.NewAuditHandler(d.AuditLogs, d.Logger)
	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close releases held resources
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
