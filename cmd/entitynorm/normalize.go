/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/suparena/entitynorm"
	"github.com/suparena/entitynorm/config"
	"github.com/suparena/entitynorm/datastore"
	"github.com/suparena/entitynorm/datastore/ddb"
	"github.com/suparena/entitynorm/datastore/mock"
	"github.com/suparena/entitynorm/logger"
	"github.com/suparena/entitynorm/registry"
	"github.com/suparena/entitynorm/schema"
)

type normalizeFlags struct {
	configFile string
	envFile    string
	schemas    string
	schema     string
	input      string
	pretty     bool
	persist    bool
}

func normalizeCmd() *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a JSON document against YAML schema definitions",
		Long: `Read a JSON document (a record or a list of records), normalize it against
the root schema and print the result and entity tables as JSON.
With --persist the entities are also written to the configured storage backend.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	f.StringVar(&flags.envFile, "env-file", "", "Path to environment file")
	f.StringVar(&flags.schemas, "schemas", "", "Path to YAML schema definitions")
	f.StringVar(&flags.schema, "schema", "", "Root schema name")
	f.StringVarP(&flags.input, "input", "i", "-", "Input JSON file, - for stdin")
	f.BoolVar(&flags.pretty, "pretty", false, "Indent the JSON output")
	f.BoolVar(&flags.persist, "persist", false, "Persist the normalized entities")
	return cmd
}

func runNormalize(cmd *cobra.Command, flags *normalizeFlags) error {
	cfg, err := config.Load(flags.configFile, flags.envFile)
	if err != nil {
		return err
	}
	if err := cfg.Merge(&config.Config{
		Schemas:    flags.schemas,
		RootSchema: flags.schema,
		Storage:    config.Storage{Persist: flags.persist},
	}); err != nil {
		return fmt.Errorf("failed to apply flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.RootSchema == "" {
		return fmt.Errorf("a root schema is required (--schema or rootSchema)")
	}

	log := logger.New(&logger.Config{
		Level:  logger.Level(cfg.Log.Level),
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})

	defs, err := schema.ParseDefinitionsFile(cfg.Schemas)
	if err != nil {
		return err
	}
	for entityType, indexMap := range defs.IndexMaps() {
		registry.RegisterIndexMap(entityType, indexMap)
	}
	schemas, err := defs.Builder().Build()
	if err != nil {
		return err
	}

	n, err := entitynorm.New(schemas, entitynorm.WithLogger(log))
	if err != nil {
		return err
	}

	data, err := readInput(cmd, flags.input)
	if err != nil {
		return err
	}
	out, err := n.NormalizeJSON(data, cfg.RootSchema)
	if err != nil {
		return err
	}
	log.Info("normalized", "schema", cfg.RootSchema, "entities", out.Entities.Count(), "diagnostics", len(out.Diagnostics))

	if cfg.Storage.Persist {
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		var opts []entitynorm.PersistOption
		if cfg.Storage.MergeExisting {
			opts = append(opts, entitynorm.WithMergeExisting())
		}
		written, err := entitynorm.Persist(cmd.Context(), out, entitynorm.NewStorageManager(store), opts...)
		if err != nil {
			return err
		}
		log.Info("persisted", "backend", cfg.Storage.Backend, "written", written)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if flags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func openStore(cfg *config.Config) (datastore.DataStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendDynamoDB:
		d := cfg.Storage.DynamoDB
		return ddb.NewDynamodbDataStore(d.AccessKey, d.SecretKey, d.Region, d.Table, ddb.WithEndpoint(d.Endpoint))
	default:
		return mock.New(), nil
	}
}
