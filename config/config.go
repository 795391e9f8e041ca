package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is everything the server reads from its environment
type Config struct {
	Addr     string `env:"FLIGHTCHESS_ADDR,default=:8000"`
	LogLevel string `env:"FLIGHTCHESS_LOG_LEVEL,default=info"`
	LogDev   bool   `env:"FLIGHTCHESS_LOG_DEV,default=false"`

	MaxPlayers          int  `env:"FLIGHTCHESS_MAX_PLAYERS,default=4"`
	PropsEnabled        bool `env:"FLIGHTCHESS_PROPS_ENABLED,default=true"`
	LaunchAtStartOffset bool `env:"FLIGHTCHESS_LAUNCH_AT_START_OFFSET,default=false"`

	// AllowedOrigins is a semicolon separated list
	AllowedOrigins  []string      `env:"FLIGHTCHESS_ALLOWED_ORIGINS,default=*"`
	ShutdownTimeout time.Duration `env:"FLIGHTCHESS_SHUTDOWN_TIMEOUT,default=5s"`
}

var ErrInvalidMaxPlayers = errors.New("FLIGHTCHESS_MAX_PLAYERS must be between 1 and 4")

// Load reads any of the given .env files that exist into the environment,
// without overriding what is already set, then decodes the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}

	if cfg.MaxPlayers < 1 || cfg.MaxPlayers > 4 {
		return Config{}, ErrInvalidMaxPlayers
	}

	return cfg, nil
}
