// Package config loads the server-level and per-collection settings
// described in SPEC_FULL.md §10/§11 from config.toml, via
// BurntSushi/toml the same way the teacher's config package did.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// AppConfig combines the server's HTTP-facing settings with the
// collection configuration new collections are opened with.
type AppConfig struct {
	Collection CollectionConfig `toml:"collection"`
	Server     ServerConfig     `toml:"server"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{Collection: DefaultCollectionConfig(), Server: DefaultServerConfig()}
}

type ProfileConfig struct {
	Dev  AppConfig `toml:"dev"`
	Test AppConfig `toml:"test"`
}

type ServerConfig struct {
	SearchURLSuffix string `toml:"search_url_suffix"`
	UpsertURLSuffix string `toml:"upsert_url_suffix"`
	Port            uint16 `toml:"port"`
	LogLevel        string `toml:"log_level"`
	DataDir         string `toml:"data_dir"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		SearchURLSuffix: "/search",
		UpsertURLSuffix: "/upsert",
		Port:            6333,
		LogLevel:        "info",
		DataDir:         "./data",
	}
}

func LoadConfig() (*AppConfig, error) {
	return LoadConfigWithProfile("dev")
}

func LoadConfigWithProfile(profile string) (*AppConfig, error) {
	profileConfig := ProfileConfig{Dev: DefaultAppConfig(), Test: DefaultAppConfig()}
	if _, err := toml.DecodeFile("config.toml", &profileConfig); err != nil {
		return nil, err
	}

	switch profile {
	case "dev":
		return &profileConfig.Dev, nil
	case "test":
		return &profileConfig.Test, nil
	default:
		return nil, fmt.Errorf("unknown profile: %s", profile)
	}
}
