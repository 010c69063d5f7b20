/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/entitynorm/errors"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Config holds the settings of a normalization run.
type Config struct {
	// Schemas is the path of the YAML schema definitions.
	Schemas string `yaml:"schemas" validate:"required"`
	// RootSchema names the schema the input is normalized against.
	RootSchema string    `yaml:"rootSchema"`
	Log        LogConfig `yaml:"log"`
	Storage    Storage   `yaml:"storage"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Storage configures where normalized entities are persisted.
type Storage struct {
	Backend string `yaml:"backend" validate:"oneof=memory dynamodb"`
	// Persist writes the entities after normalizing.
	Persist bool `yaml:"persist"`
	// MergeExisting merges entities into already stored records.
	MergeExisting bool     `yaml:"mergeExisting"`
	DynamoDB      DynamoDB `yaml:"dynamodb"`
}

// DynamoDB holds the single-table settings.
type DynamoDB struct {
	Table     string `yaml:"table"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the default settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Storage: Storage{
			Backend: BackendMemory,
			DynamoDB: DynamoDB{
				Region: "us-east-1",
			},
		},
	}
}

// Load reads the YAML file at path (skipped when empty), applies environment
// overrides and fills the remaining fields with defaults. envFile names a
// dotenv file; when empty, a .env in the working directory is used if present.
// The result is not validated so callers can merge flags first.
func Load(path, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"ENTITYNORM_SCHEMAS":         &cfg.Schemas,
		"ENTITYNORM_ROOT_SCHEMA":     &cfg.RootSchema,
		"ENTITYNORM_LOG_LEVEL":       &cfg.Log.Level,
		"ENTITYNORM_STORAGE_BACKEND": &cfg.Storage.Backend,
		"AWS_ACCESS_KEY_ID":          &cfg.Storage.DynamoDB.AccessKey,
		"AWS_SECRET_ACCESS_KEY":      &cfg.Storage.DynamoDB.SecretKey,
		"AWS_REGION":                 &cfg.Storage.DynamoDB.Region,
		"AWS_DDB_TABLE":              &cfg.Storage.DynamoDB.Table,
		"DDB_ENDPOINT":               &cfg.Storage.DynamoDB.Endpoint,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("ENTITYNORM_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewValidationError("ENTITYNORM_LOG_JSON", err.Error())
		}
		cfg.Log.JSON = b
	}
	return nil
}

// Merge overrides fields of c with the non-zero fields of other.
func (c *Config) Merge(other *Config) error {
	if other == nil {
		return nil
	}
	return mergo.Merge(c, other, mergo.WithOverride)
}

// Validate checks field constraints and backend requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Namespace(), fmt.Sprintf("failed %q constraint", fe.Tag()))
		}
		return err
	}
	if c.Storage.Backend == BackendDynamoDB && c.Storage.DynamoDB.Table == "" {
		return errors.NewValidationError("Config.Storage.DynamoDB.Table", "required for the dynamodb backend")
	}
	return nil
}
