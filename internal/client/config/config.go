// Package config handles configuration for the client component:
// defaults and an optional config file. Command-line flags are owned by
// the cobra commands and applied on top.
package config

import "github.com/dmitrijs2005/tripauth/internal/filex"

type Config struct {
	ServerEndpointAddr string
	SessionFile        string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionFile = "session.db"
}

// FileConfig is the on-disk shape of Config (JSON, YAML or TOML).
type FileConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr" yaml:"server_endpoint_addr" toml:"server_endpoint_addr"`
	SessionFile        string `json:"session_file" yaml:"session_file" toml:"session_file"`
}

// LoadConfig returns defaults overlaid with the file at path. An empty
// path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}

	var fc FileConfig
	if err := filex.DecodeFile(path, &fc); err != nil {
		return nil, err
	}
	if fc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	}
	if fc.SessionFile != "" {
		cfg.SessionFile = fc.SessionFile
	}
	return cfg, nil
}
