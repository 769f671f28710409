package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the ballotd service.
type Config struct {
	Addr             string        `env:"ADDR,default=:8080"`
	DBDSN            string        `env:"DB_DSN,required"`
	NATSURL          string        `env:"NATS_URL"`
	AdminKey         string        `env:"ADMIN_KEY,required"`
	AdminTokenTTL    time.Duration `env:"ADMIN_TOKEN_TTL,default=2h"`
	SessionTTL       time.Duration `env:"SESSION_TTL,default=30m"`
	VotingPeriodDays int           `env:"VOTING_PERIOD_DAYS,default=5"`
	LetterTemplates  string        `env:"LETTER_TEMPLATES,default=letters.yaml"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
