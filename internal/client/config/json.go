package config

import (
	"time"

	"github.com/dmitrijs2005/offsync/internal/flagx"
	"github.com/dmitrijs2005/offsync/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "3s" or integer
// nanoseconds. Absent keys leave the current value untouched.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	IdleTimeout         timex.Duration `json:"idle_timeout"`
	ConnectivityTimeout timex.Duration `json:"connectivity_timeout"`
	RemoteTimeout       timex.Duration `json:"remote_timeout"`
	DatabaseDSN         string         `json:"database_dsn"`
	MetricsAddr         string         `json:"metrics_addr"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c / -config. It panics
// when the file cannot be read or parsed.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	var jc JsonConfig
	if err := flagx.LoadJSON(path, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.LogLevel, jc.LogLevel)

	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.IdleTimeout, jc.IdleTimeout)
	setDuration(&cfg.ConnectivityTimeout, jc.ConnectivityTimeout)
	setDuration(&cfg.RemoteTimeout, jc.RemoteTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
