package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/txledger/internal/config"
	"github.com/fastprodman/txledger/internal/infra/logging"
)

type engineConfig struct {
	LogLevel        slog.Level     `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat       logging.Format `env:"APP_LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout time.Duration  `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Postgres        config.PostgresConfig
}
