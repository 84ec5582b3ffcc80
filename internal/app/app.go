package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/oluseyi/kycflow/internal/cache"
	"github.com/oluseyi/kycflow/internal/config"
	"github.com/oluseyi/kycflow/internal/env"
	"github.com/oluseyi/kycflow/internal/errHandler"
	"github.com/oluseyi/kycflow/internal/helper"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/oluseyi/kycflow/internal/smtp"
	"github.com/oluseyi/kycflow/internal/stream"
	"github.com/joho/godotenv"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items when they need them
type Application struct {
	Config       config.Config
	DB           repository.Database
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	Cache        *cache.Cache
	Kafka        *stream.KafkaStream
	WG           sync.WaitGroup
	errorHandler *errHandler.ErrorHandler
	helper       *helper.HelperRepository
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")
	cfg.Jwt.ExpiryMinutes = env.GetInt("JWT_EXPIRY_MINUTES", 60)

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "KycFlow <no_reply@example.org>")

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app := &Application{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Mailer: mailer,
		Cache:  cache.New(cfg.RedisServer, 0),
		Kafka:  stream.New(cfg.KafkaServers),
	}

	app.helper = helper.New(&cfg.BaseURL, &app.WG, nil)
	app.errorHandler = errHandler.New(cfg.Notifications.Email, mailer, logger, app.helper)
	app.helper.SetErrorReporter(app.errorHandler)

	return app, nil
}

func (app *Application) ErrorHandler() *errHandler.ErrorHandler {
	return app.errorHandler
}

func (app *Application) Helper() *helper.HelperRepository {
	return app.helper
}
