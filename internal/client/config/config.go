package config

import "time"

// Config holds runtime settings for the offsync client.
type Config struct {
	// ServerEndpointAddr is host:port of the remote store's gRPC endpoint.
	ServerEndpointAddr string

	// OnlineCheckInterval is how often the prompt's online indicator is refreshed.
	OnlineCheckInterval time.Duration

	// SyncInterval is the period of the background reconciliation cycle.
	SyncInterval time.Duration

	// IdleTimeout is the inactivity interval after which the session locks.
	IdleTimeout time.Duration

	// ConnectivityTimeout bounds one reachability probe.
	ConnectivityTimeout time.Duration

	// RemoteTimeout bounds one remote store call.
	RemoteTimeout time.Duration

	DatabaseDSN string

	// MetricsAddr serves /metrics and /healthz when not empty.
	MetricsAddr string

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 10 * time.Second
	c.IdleTimeout = 60 * time.Second
	c.ConnectivityTimeout = 3 * time.Second
	c.RemoteTimeout = 5 * time.Second
	c.DatabaseDSN = "offsync.db"
	c.MetricsAddr = ""
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
