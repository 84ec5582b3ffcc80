package handler

import (
	"io"
	"log/slog"

	"github.com/oluseyi/kycflow/internal/config"
	"github.com/oluseyi/kycflow/internal/errHandler"
)

// password/hash pair used across the auth tests
const (
	testPassword     = "correctpassword"
	testPasswordHash = "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG"
)

func newTestConfig() *config.Config {
	var cfg config.Config
	cfg.BaseURL = "http://localhost"
	cfg.HttpPort = 8080
	cfg.Jwt.SecretKey = "test_secret"
	cfg.Jwt.ExpiryMinutes = 60
	return &cfg
}

// newTestErrorHandler builds a real error handler that logs nowhere and
// never sends notification mail.
func newTestErrorHandler() *errHandler.ErrorHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return errHandler.New("", nil, logger, nil)
}
