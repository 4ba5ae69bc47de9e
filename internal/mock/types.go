package mock

import (
	"time"

	"github.com/studiowebux/carcli/internal/types"
)

// Config represents the mock server configuration
type Config struct {
	Port    int               `json:"port" yaml:"port"`       // Server port (default: 10150)
	Host    string            `json:"host" yaml:"host"`       // Server host (default: localhost)
	Secret  string            `json:"secret" yaml:"secret"`   // HS256 signing key
	Users   map[string]string `json:"users" yaml:"users"`     // username → password
	Brands  []types.Brand     `json:"brands" yaml:"brands"`   // seed brands (default set when empty)
	Cars    []SeedCar         `json:"cars" yaml:"cars"`       // seed cars (default set when empty)
	Logging bool              `json:"logging" yaml:"logging"` // Enable request logging
}

// SeedCar is a car in the seed data, referencing its brand by id
type SeedCar struct {
	BrandID         int64   `json:"brandId" yaml:"brandId"`
	Specification   string  `json:"specification" yaml:"specification"`
	EngineLiter     float64 `json:"engineLiter" yaml:"engineLiter"`
	IsNew           bool    `json:"isNew" yaml:"isNew"`
	Price           float64 `json:"price" yaml:"price"`
	ReleaseDateTime string  `json:"releaseDateTime" yaml:"releaseDateTime"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Route     string        `json:"route"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}
