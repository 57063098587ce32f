// Package app wires application dependencies into a container.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	billingApp "github.com/nestora/nestora/internal/billing/application"
	billingDomain "github.com/nestora/nestora/internal/billing/domain"
	billingPersistence "github.com/nestora/nestora/internal/billing/infrastructure/persistence"
	listingCommands "github.com/nestora/nestora/internal/listings/application/commands"
	listingQueries "github.com/nestora/nestora/internal/listings/application/queries"
	listingsDomain "github.com/nestora/nestora/internal/listings/domain"
	listingPersistence "github.com/nestora/nestora/internal/listings/infrastructure/persistence"
	"github.com/nestora/nestora/internal/shared/infrastructure/eventbus"
	"github.com/nestora/nestora/internal/shared/infrastructure/migrations"
	"github.com/nestora/nestora/pkg/config"
	"github.com/nestora/nestora/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite" // Register SQLite driver
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Health *observability.HealthRegistry

	// Database. Exactly one of DB and SQLiteDB is set.
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB

	// Redis
	RedisClient *redis.Client

	// Repositories
	SubscriptionRepo billingDomain.SubscriptionRepository
	PaymentRepo      billingDomain.PaymentRepository
	ListingRepo      listingsDomain.ListingRepository

	// Publishers
	EventPublisher eventbus.Publisher

	// Billing handlers
	ApplyOrderEventHandler   *billingApp.ApplyOrderEventHandler
	ResolveEntitlement       *billingApp.ResolveEntitlementHandler
	CheckSubscriptionHandler *billingApp.CheckSubscriptionHandler

	// Listing handlers
	CreateListingHandler  *listingCommands.CreateListingHandler
	TrackClickHandler     *listingCommands.TrackClickHandler
	SellerOverviewHandler *listingQueries.SellerOverviewHandler
}

// NewContainer creates and wires all dependencies. PostgreSQL is used when
// DATABASE_URL is set; otherwise the application runs against an embedded
// SQLite database so local mode needs no external services.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}

	if cfg.DatabaseURL != "" {
		if err := c.initPostgres(ctx); err != nil {
			return nil, err
		}
	} else {
		if err := c.initSQLite(ctx); err != nil {
			return nil, err
		}
	}

	// Connect to Redis (optional subscription read cache)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, subscription cache disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					c.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, subscription cache disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				c.SubscriptionRepo = billingPersistence.NewCachedSubscriptionRepository(
					c.SubscriptionRepo,
					redisClient,
					cfg.SubscriptionCacheTTL,
					logger,
				)
				c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
					return redisClient.Ping(ctx).Err()
				}))
				logger.Info("connected to Redis")
			}
		}
	}

	// Create event publisher
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			// Fall back to in-process bus in development
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using in-process bus")
			c.EventPublisher = eventbus.NewInProcessBus(logger)
		} else {
			c.EventPublisher = publisher
			c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Check))
		}
	} else {
		c.EventPublisher = eventbus.NewInProcessBus(logger)
	}

	// Create billing handlers
	c.ApplyOrderEventHandler = billingApp.NewApplyOrderEventHandler(billingApp.ApplyOrderEventConfig{
		Subscriptions: c.SubscriptionRepo,
		Payments:      c.PaymentRepo,
		WebhookSecret: cfg.BillingWebhookSecret,
		Publisher:     c.EventPublisher,
		Logger:        logger,
	})
	c.ResolveEntitlement = billingApp.NewResolveEntitlementHandler(c.SubscriptionRepo)
	c.CheckSubscriptionHandler = billingApp.NewCheckSubscriptionHandler(c.SubscriptionRepo, nil)

	// Create listing handlers
	c.CreateListingHandler = listingCommands.NewCreateListingHandler(c.ListingRepo, c.ResolveEntitlement, logger, nil)
	c.TrackClickHandler = listingCommands.NewTrackClickHandler(c.ListingRepo)
	c.SellerOverviewHandler = listingQueries.NewSellerOverviewHandler(c.ListingRepo, nil, c.ResolveEntitlement, nil)

	return c, nil
}

// initPostgres connects to PostgreSQL, runs migrations and creates the
// PostgreSQL-backed repositories.
func (c *Container) initPostgres(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = pool
	c.SubscriptionRepo = billingPersistence.NewPostgresSubscriptionRepository(pool)
	c.PaymentRepo = billingPersistence.NewPostgresPaymentRepository(pool)
	c.ListingRepo = listingPersistence.NewPostgresListingRepository(pool)
	c.Health.Register("database", observability.DatabaseHealthChecker(pool.Ping))

	c.Logger.Info("connected to database", "driver", "postgres")
	return nil
}

// initSQLite opens the embedded SQLite database, runs migrations and
// creates the SQLite-backed repositories.
func (c *Container) initSQLite(ctx context.Context) error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", c.Config.SQLitePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.SQLiteDB = db
	c.SubscriptionRepo = billingPersistence.NewSQLiteSubscriptionRepository(db)
	c.PaymentRepo = billingPersistence.NewSQLitePaymentRepository(db)
	c.ListingRepo = listingPersistence.NewSQLiteListingRepository(db)
	c.Health.Register("database", observability.DatabaseHealthChecker(db.PingContext))

	c.Logger.Info("connected to database", "driver", "sqlite", "path", c.Config.SQLitePath)
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		} else {
			c.Logger.Info("SQLite connection closed")
		}
	}
}
