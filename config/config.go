// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds the player-facing runtime settings.
type Config struct {
	SaveDir     string        `env:"WITCHLIGHT_SAVE_DIR"     envDefault:"saves"                validate:"required"`
	SaveBackend string        `env:"WITCHLIGHT_SAVE_BACKEND" envDefault:"file"                 validate:"oneof=file sqlite"`
	SaveDB      string        `env:"WITCHLIGHT_SAVE_DB"      envDefault:"saves/witchlight.db"  validate:"required_if=SaveBackend sqlite"`
	LogLevel    string        `env:"WITCHLIGHT_LOG_LEVEL"    envDefault:"info"                 validate:"oneof=debug info warn warning error"`
	LogFormat   string        `env:"WITCHLIGHT_LOG_FORMAT"   envDefault:"text"                 validate:"oneof=text json"`
	LogFile     string        `env:"WITCHLIGHT_LOG_FILE"`
	TypingSpeed time.Duration `env:"WITCHLIGHT_TYPING_SPEED" envDefault:"50ms"                 validate:"gte=0,lte=1s"`
}

// Load reads the optional .env files (default ".env"), then the process
// environment, and validates the result. Variables already set in the
// environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by the variable the player sets.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks the settings, naming the offending variables.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
