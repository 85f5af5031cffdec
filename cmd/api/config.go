package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/txledger/internal/config"
	"github.com/fastprodman/txledger/internal/infra/logging"
)

type apiConfig struct {
	Port            uint16         `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level     `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat       logging.Format `env:"APP_LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration  `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64          `env:"APP_MAX_BODY_BYTES" envDefault:"67108864"`
	Postgres        config.PostgresConfig
}
