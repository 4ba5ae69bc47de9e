package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/carcli/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHost   = "localhost"
	DefaultPort   = 10150
	DefaultSecret = "carcli-mock-secret"
)

// DefaultConfig returns a config with one admin/admin user and the demo data
func DefaultConfig() *Config {
	cfg := &Config{Logging: true}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Secret == "" {
		cfg.Secret = DefaultSecret
	}
	if len(cfg.Users) == 0 {
		cfg.Users = map[string]string{"admin": "admin"}
	}
	if len(cfg.Brands) == 0 && len(cfg.Cars) == 0 {
		cfg.Brands = append([]types.Brand(nil), demoBrands...)
		cfg.Cars = append([]SeedCar(nil), demoCars...)
	}
}

// LoadConfig loads a mock configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	applyDefaults(&config)

	return &config, nil
}

// validateConfig checks seed data references
func validateConfig(config *Config) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}

	known := make(map[int64]bool, len(config.Brands))
	for i, b := range config.Brands {
		if b.ID <= 0 {
			return fmt.Errorf("brand %d: id must be positive", i)
		}
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("brand %d: name is required", i)
		}
		if known[b.ID] {
			return fmt.Errorf("brand %d: duplicate id %d", i, b.ID)
		}
		known[b.ID] = true
	}

	for i, c := range config.Cars {
		if !known[c.BrandID] {
			return fmt.Errorf("car %d: unknown brandId %d", i, c.BrandID)
		}
		if c.ReleaseDateTime != "" {
			if _, err := types.ParseLocalDateTime(c.ReleaseDateTime); err != nil {
				return fmt.Errorf("car %d: %w", i, err)
			}
		}
	}

	return nil
}

var demoBrands = []types.Brand{
	{ID: 1, Name: "BMW"},
	{ID: 2, Name: "Audi"},
	{ID: 3, Name: "Toyota"},
	{ID: 4, Name: "Honda"},
	{ID: 5, Name: "Mercedes-Benz"},
}

var demoCars = []SeedCar{
	{BrandID: 1, Specification: "320i Sedan", EngineLiter: 2.0, IsNew: true, Price: 45000, ReleaseDateTime: "2023-03-15T00:00:00"},
	{BrandID: 1, Specification: "M3 Competition", EngineLiter: 3.0, IsNew: false, Price: 72000, ReleaseDateTime: "2021-06-01T00:00:00"},
	{BrandID: 2, Specification: "A4 Avant", EngineLiter: 2.0, IsNew: true, Price: 41000, ReleaseDateTime: "2022-09-20T00:00:00"},
	{BrandID: 2, Specification: "Q7 TDI", EngineLiter: 3.0, IsNew: false, Price: 58000, ReleaseDateTime: "2020-11-05T00:00:00"},
	{BrandID: 3, Specification: "Corolla Hybrid", EngineLiter: 1.8, IsNew: true, Price: 26000, ReleaseDateTime: "2023-01-10T00:00:00"},
	{BrandID: 3, Specification: "Yaris", EngineLiter: 1.5, IsNew: false, Price: 15000, ReleaseDateTime: "2019-04-22T00:00:00"},
	{BrandID: 3, Specification: "RAV4", EngineLiter: 2.5, IsNew: true, Price: 34000, ReleaseDateTime: "2022-02-14T00:00:00"},
	{BrandID: 4, Specification: "Civic Type R", EngineLiter: 2.0, IsNew: true, Price: 44000, ReleaseDateTime: "2023-07-30T00:00:00"},
	{BrandID: 4, Specification: "Jazz", EngineLiter: 1.3, IsNew: false, Price: 12000, ReleaseDateTime: "2018-08-08T00:00:00"},
	{BrandID: 5, Specification: "C 200", EngineLiter: 1.5, IsNew: true, Price: 48000, ReleaseDateTime: "2023-05-02T00:00:00"},
	{BrandID: 5, Specification: "E 300 de", EngineLiter: 2.0, IsNew: false, Price: 52000, ReleaseDateTime: "2021-12-12T00:00:00"},
	{BrandID: 1, Specification: "X5 xDrive40i", EngineLiter: 3.0, IsNew: true, Price: 81000, ReleaseDateTime: "2024-01-18T00:00:00"},
}

// SaveConfig saves a mock configuration to a file
func SaveConfig(config *Config, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
