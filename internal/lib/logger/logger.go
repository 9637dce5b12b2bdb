package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/linemk/ld-shop/internal/lib/logger/handlers/slogpretty"
)

// окружения из конфига
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const serviceName = "ld-shop"

// SetupLogger пишет в stdout: local - цветной вывод, dev - JSON с debug, остальное - JSON с info
func SetupLogger(env string) *slog.Logger {
	return New(env, os.Stdout)
}

func New(env string, out io.Writer) *slog.Logger {
	var handler slog.Handler

	switch env {
	case EnvLocal:
		color.NoColor = false
		opts := slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		return slog.New(opts.NewPrettyHandler(out))
	case EnvDev:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(handler).With(slog.String("service", serviceName), slog.String("env", env))
}
