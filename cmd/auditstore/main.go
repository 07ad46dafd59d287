/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command auditstore is a small operator tool for managing the DynamoDB
// tables behind a store set.
//
// Usage:
//
//	auditstore -config config.yaml stores list
//	auditstore -config config.yaml stores create <name>
//	auditstore -config config.yaml stores drop <name>
//
// Credentials come from the environment (AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY); a .env file in the working directory is loaded
// when present.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/auditstore"
	"github.com/suparena/auditstore/store/ddb"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configFlag  = flag.String("config", "auditstore.yaml", "Path to the YAML configuration file")
)

// Config is the CLI's YAML configuration.
type Config struct {
	Region      string `yaml:"region"`
	TablePrefix string `yaml:"tablePrefix"`
}

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := auditstore.GetVersionInfo()
		fmt.Printf("AuditStore version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "auditstore: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 || args[0] != "stores" {
		return fmt.Errorf("usage: auditstore [-config file] stores <list|create|drop> [name]")
	}

	_ = godotenv.Load()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}

	client, err := ddb.NewClient(
		os.Getenv("AWS_ACCESS_KEY_ID"),
		os.Getenv("AWS_SECRET_ACCESS_KEY"),
		cfg.Region,
	)
	if err != nil {
		return err
	}
	provider := ddb.NewProvider(client, cfg.TablePrefix)
	ctx := context.Background()

	switch args[1] {
	case "list":
		names, err := provider.StoreNames(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case "create":
		if len(args) < 3 {
			return fmt.Errorf("usage: auditstore stores create <name>")
		}
		if err := provider.CreateStore(ctx, args[2]); err != nil {
			return err
		}
		fmt.Printf("store %q created\n", args[2])
		return nil

	case "drop":
		if len(args) < 3 {
			return fmt.Errorf("usage: auditstore stores drop <name>")
		}
		if err := provider.DeleteStore(ctx, args[2]); err != nil {
			return err
		}
		fmt.Printf("store %q dropped\n", args[2])
		return nil

	default:
		return fmt.Errorf("unknown stores subcommand %q", args[1])
	}
}

func loadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("config %s: region is required", path)
	}
	return &cfg, nil
}
