// Package config loads runtime configuration for the offsync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the remote store
//	-i int      online status check interval (seconds)
//	-s int      sync interval (seconds)
//	-l int      idle lock timeout (seconds)
//	-d string   local database file
//	-m string   metrics listen address
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "sync_interval": "10s",
//	  "idle_timeout": "1m",
//	  "connectivity_timeout": "3s",
//	  "remote_timeout": "5s",
//	  "database_dsn": "offsync.db",
//	  "metrics_addr": "127.0.0.1:9101",
//	  "log_level": "info"
//	}
package config
