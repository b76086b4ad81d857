package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration variable.
const EnvPrefix = "CARDSCAN_"

// Load builds a Config with LoadEnvFile(ctx, ".env").
func Load(ctx context.Context) (*Config, error) {
	return LoadEnvFile(ctx, ".env")
}

// LoadEnvFile builds a Config by layering, lowest precedence first:
//  1. defaults (New(ctx))
//  2. YAML file named by CARDSCAN_CONFIG
//  3. env (prefix CARDSCAN_)
//
// Variables from dotenv are added to the environment first without
// replacing ones already set; a missing dotenv file is ignored.
func LoadEnvFile(ctx context.Context, dotenv string) (*Config, error) {
	base := New(ctx)

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotenv, err)
		}
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// CARDSCAN_MIN_CONFIDENCE -> min_confidence; underscores are kept to
	// match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
