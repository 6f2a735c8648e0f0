// Package config loads typed configuration structs from the environment,
// optionally seeding the environment from a dotenv-style file first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// envFileVar names the file exported into the environment before struct
// processing. When unset, ".env" is loaded if it exists.
const envFileVar = "BARBERFLOW_ENV_FILE"

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

func New[T any](prefix string) (*T, error) {
	if path := strings.TrimSpace(os.Getenv(envFileVar)); path != "" {
		if err := exportEnvironment(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

// exportEnvironment reads path with viper and copies every key into the
// process environment so envconfig can see it. Variables already set in the
// real environment win over file values.
func exportEnvironment(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, val := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, present := os.LookupEnv(name); present {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
