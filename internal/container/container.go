package container

import (
	"context"
	"fmt"

	"paxclean/adapters/memory"
	"paxclean/adapters/postgres"
	"paxclean/app"
	"paxclean/domain/table"
	"paxclean/internal/config"
	"paxclean/internal/errors"
	"paxclean/internal/migration"
	"paxclean/internal/pipeline"
	"paxclean/internal/report"
	"paxclean/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger logrus.FieldLogger

	// Infrastructure
	DB *sqlx.DB

	// Cleaning components
	Schema   *table.Schema
	Rules    *config.Rules
	Pipeline *pipeline.Pipeline

	// Repositories (data access layer)
	RunRepo ports.RunRepository

	// Application services
	Cleaning *app.CleaningService
}

// New creates a new dependency injection container. Runs are kept in memory
// until InitWithDatabase is called.
func New(cfg *config.Config, logger logrus.FieldLogger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Schema: table.PassengerSchema(),
	}

	rules, err := config.LoadRules(cfg.Pipeline.RulesFile)
	if err != nil {
		return nil, err
	}
	c.Rules = rules

	c.Pipeline, err = pipeline.New(c.Schema, rules, logger, pipeline.WithParallelFields(cfg.Pipeline.ParallelFields))
	if err != nil {
		return nil, err
	}

	c.RunRepo = memory.NewRunRepository()
	c.initServices()
	return c, nil
}

// InitWithDatabase switches run persistence to PostgreSQL
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	if err := db.Ping(); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	c.DB = db
	c.RunRepo = postgres.NewRunRepository(db)
	c.initServices()

	c.Logger.Info("container initialized with database connection")
	return nil
}

func (c *Container) initServices() {
	outputs := app.OutputOptions{
		Dir:           c.Config.Pipeline.OutputDir,
		TableFormats:  c.Config.Pipeline.Formats,
		ReportFormats: report.Formats,
	}
	c.Cleaning = app.NewCleaningService(c.Pipeline, c.Schema, c.RunRepo, outputs, c.Logger)
}

// OpenDatabase connects to PostgreSQL and runs migrations
func OpenDatabase(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Bootstrap builds the container and, when a database is configured,
// connects it and switches persistence to PostgreSQL.
func Bootstrap(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Container, error) {
	c, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled() {
		logger.Info("no DATABASE_URL configured, run reports are kept in memory")
		return c, nil
	}

	db, err := OpenDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := c.InitWithDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}
