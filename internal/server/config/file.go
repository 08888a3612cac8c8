package config

import (
	"github.com/dmitrijs2005/tripauth/internal/filex"
	"github.com/dmitrijs2005/tripauth/internal/flagx"
	"github.com/dmitrijs2005/tripauth/internal/timex"
)

// FileConfig is the on-disk shape of Config. JSON, YAML and TOML files are
// accepted; durations are strings such as "300ms" or "168h". Fields left
// out of the file keep their current value.
type FileConfig struct {
	EndpointAddrGRPC     string          `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	EndpointAddrHTTP     string          `json:"endpoint_addr_http" yaml:"endpoint_addr_http" toml:"endpoint_addr_http"`
	StorageDSN           string          `json:"storage_dsn" yaml:"storage_dsn" toml:"storage_dsn"`
	SecretKey            string          `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	TokenValidity        timex.Duration  `json:"token_validity" yaml:"token_validity" toml:"token_validity"`
	TokenFormat          string          `json:"token_format" yaml:"token_format" toml:"token_format"`
	Latency              *timex.Duration `json:"latency" yaml:"latency" toml:"latency"`
	LegacyPasswordCheck  *bool           `json:"legacy_password_check" yaml:"legacy_password_check" toml:"legacy_password_check"`
	SessionSweepSchedule string          `json:"session_sweep_schedule" yaml:"session_sweep_schedule" toml:"session_sweep_schedule"`
	OTLPEndpoint         string          `json:"otlp_endpoint" yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	S3RootUser           string          `json:"s3_root_user" yaml:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword       string          `json:"s3_root_password" yaml:"s3_root_password" toml:"s3_root_password"`
	S3Region             string          `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
	S3BaseEndpoint       string          `json:"s3_base_endpoint" yaml:"s3_base_endpoint" toml:"s3_base_endpoint"`
}

// parseFile loads the file named by -c or -config into config. Nothing
// happens when neither flag is given. Unreadable or invalid files panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	c := &FileConfig{}
	if err := filex.DecodeFile(path, c); err != nil {
		panic(err)
	}
	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StorageDSN, c.StorageDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidity.Duration > 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	setString(&config.TokenFormat, c.TokenFormat)
	// Latency 0 is meaningful, so only an absent key keeps the default.
	if c.Latency != nil {
		config.Latency = c.Latency.Duration
	}
	if c.LegacyPasswordCheck != nil {
		config.LegacyPasswordCheck = *c.LegacyPasswordCheck
	}
	setString(&config.SessionSweepSchedule, c.SessionSweepSchedule)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
