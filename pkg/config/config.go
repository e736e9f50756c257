package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds settings for the metadata extraction CLIs. Values come from
// environment variables; command-line flags override them after Load.
type Config struct {
	// Port is the engine's query port. Zero means auto-detect by inspecting
	// running engine processes.
	Port int `env:"ENGINE_PORT" env-default:"0"`

	// OutputPath is where the extracted metadata document is written.
	// The file is overwritten unconditionally.
	OutputPath string `env:"METADOC_OUTPUT" env-default:"output.json"`

	// Host is the engine host. Desktop engine instances listen on loopback.
	Host string `env:"ENGINE_HOST" env-default:"localhost"`

	// ProcessName is the engine executable name used for port auto-detection.
	ProcessName string `env:"ENGINE_PROCESS_NAME" env-default:"msmdsrv"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// Endpoint returns the host:port endpoint for a resolved port.
func (c *Config) Endpoint(port int) string {
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}
