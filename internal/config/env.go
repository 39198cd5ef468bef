package config

import (
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings read from the environment.
type Env struct {
	ConfigPath string `env:"TIERVIEW_CONFIG"`
	DBPath     string `env:"TIERVIEW_DB"`
	LogLevel   string `env:"TIERVIEW_LOG_LEVEL" envDefault:"info"`
	Token      string `env:"TIERVIEW_JWT"`
	MeetingURL string `env:"TIERVIEW_URL"`
	Format     string `env:"TIERVIEW_FORMAT" envDefault:"text"`
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, &Error{Code: ErrCodeEnv, Message: "parse env", Err: err}
	}
	return e, nil
}

// Level maps LogLevel to a slog level. Unknown names are info.
func (e Env) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(e.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
