package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalid = errors.New("invalid config")

// MaxSeats is the largest table the board supports.
const MaxSeats = 5

type Config struct {
	WSAddr        string        `env:"WS_ADDR" envDefault:":7070"`
	OpsAddr       string        `env:"OPS_ADDR" envDefault:":8080"`
	DBDSN         string        `env:"DB_DSN"`
	MigrationsDir string        `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`
	AnswerTimeout time.Duration `env:"ANSWER_TIMEOUT" envDefault:"60s"`
	MinPlayers    int           `env:"MIN_PLAYERS" envDefault:"3"`
	MaxPlayers    int           `env:"MAX_PLAYERS" envDefault:"5"`
	LobbyWait     time.Duration `env:"LOBBY_WAIT" envDefault:"30s"`
	Skulls        int           `env:"SKULLS" envDefault:"8"`
	// MaxTurns caps a match; 0 means no cap.
	MaxTurns       int           `env:"MAX_TURNS" envDefault:"0"`
	JoinSecret     string        `env:"JOIN_SECRET"`
	JoinTokenTTL   time.Duration `env:"JOIN_TOKEN_TTL" envDefault:"15m"`
	OriginPatterns []string      `env:"ORIGIN_PATTERNS" envSeparator:","`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	Seed           int64         `env:"SEED" envDefault:"0"`
}

// Load reads an optional .env file, then SKIRMISH_* variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SKIRMISH_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.MinPlayers < 1:
		return fmt.Errorf("%w: MIN_PLAYERS must be at least 1, got %d", ErrInvalid, c.MinPlayers)
	case c.MaxPlayers > MaxSeats:
		return fmt.Errorf("%w: MAX_PLAYERS must be at most %d, got %d", ErrInvalid, MaxSeats, c.MaxPlayers)
	case c.MinPlayers > c.MaxPlayers:
		return fmt.Errorf("%w: MIN_PLAYERS %d exceeds MAX_PLAYERS %d", ErrInvalid, c.MinPlayers, c.MaxPlayers)
	case c.Skulls < 1:
		return fmt.Errorf("%w: SKULLS must be at least 1, got %d", ErrInvalid, c.Skulls)
	case c.AnswerTimeout <= 0:
		return fmt.Errorf("%w: ANSWER_TIMEOUT must be positive", ErrInvalid)
	case c.MaxTurns < 0:
		return fmt.Errorf("%w: MAX_TURNS must not be negative", ErrInvalid)
	}
	return nil
}
