// Package config handles configuration for the server component,
// including defaults, a config file overlay, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/server/auth"
)

// Config holds runtime settings for the tripauth server.
//
// Fields:
//   - EndpointAddrGRPC / EndpointAddrHTTP: bind addresses of the two surfaces.
//   - StorageDSN: key-value backend, e.g. "memory://", "sqlite://tripauth.db",
//     "postgres://...", "s3://bucket/prefix".
//   - SecretKey: HMAC secret for JWT tokens. Do not use the default in prod.
//   - TokenValidity / TokenFormat: token lifetime and codec ("jwt" or "legacy").
//   - Latency: simulated delay before every auth operation.
//   - LegacyPasswordCheck: accept any password of six or more characters.
//   - SessionSweepSchedule: cron expression; empty disables the sweeper.
//   - OTLPEndpoint: OTLP/HTTP trace collector; empty disables export.
//   - S3*: credentials and endpoint for the s3:// backend.
type Config struct {
	EndpointAddrGRPC     string
	EndpointAddrHTTP     string
	StorageDSN           string
	SecretKey            string
	TokenValidity        time.Duration
	TokenFormat          string
	Latency              time.Duration
	LegacyPasswordCheck  bool
	SessionSweepSchedule string
	OTLPEndpoint         string
	S3RootUser           string
	S3RootPassword       string
	S3Region             string
	S3BaseEndpoint       string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.StorageDSN = "sqlite://tripauth.db"
	c.SecretKey = "secretKey"
	c.TokenValidity = auth.DefaultValidity
	c.TokenFormat = auth.FormatJWT
	c.Latency = 300 * time.Millisecond
	c.LegacyPasswordCheck = false
	c.SessionSweepSchedule = ""
	c.OTLPEndpoint = ""
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// S3Options returns the options for kv.Open.
func (c *Config) S3Options() kv.S3Options {
	return kv.S3Options{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.TokenFormat {
	case auth.FormatJWT, auth.FormatLegacy:
	default:
		return fmt.Errorf("unknown token format %q", c.TokenFormat)
	}
	if c.TokenFormat == auth.FormatJWT && c.SecretKey == "" {
		return fmt.Errorf("secret key is required for jwt tokens")
	}
	if c.TokenValidity <= 0 {
		return fmt.Errorf("token validity must be positive")
	}
	if c.Latency < 0 {
		return fmt.Errorf("latency must not be negative")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
