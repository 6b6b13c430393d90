package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIBaseURL string `env:"PLENARIO_API_URL" envDefault:"https://api.camaradigital.cloud"`
	// SocketURL overrides the socket endpoint; when empty it is derived from
	// APIBaseURL by switching the scheme.
	SocketURL  string `env:"PLENARIO_WS_URL"`
	TenantID   string `env:"PLENARIO_TENANT_ID,required"`
	Token      string `env:"PLENARIO_TOKEN,required"`
	VereadorID string `env:"PLENARIO_VEREADOR_ID"`
	ListenAddr string `env:"PLENARIO_LISTEN_ADDR" envDefault:"0.0.0.0:8080"`

	DialTimeout   time.Duration `env:"PLENARIO_DIAL_TIMEOUT" envDefault:"20s"`
	ReconnectBase time.Duration `env:"PLENARIO_RECONNECT_BASE" envDefault:"1s"`
	ReconnectMax  time.Duration `env:"PLENARIO_RECONNECT_MAX" envDefault:"30s"`
	MaxAttempts   int           `env:"PLENARIO_RECONNECT_ATTEMPTS" envDefault:"5"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SocketEndpoint resolves the realtime endpoint, deriving it from the API
// base URL when no explicit socket URL is configured.
func (c Config) SocketEndpoint() string {
	if c.SocketURL != "" {
		return c.SocketURL
	}
	endpoint := c.APIBaseURL
	endpoint = strings.Replace(endpoint, "https://", "wss://", 1)
	endpoint = strings.Replace(endpoint, "http://", "ws://", 1)
	return strings.TrimRight(endpoint, "/") + "/socket"
}
