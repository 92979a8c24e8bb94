package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/offsync/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string   address and port of the remote store
//	-i int      online check interval (seconds)
//	-s int      sync interval (seconds)
//	-l int      idle lock timeout (seconds)
//	-d string   local database path
//	-m string   metrics listen address
//
// Only these flags are parsed; everything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-s", "-l", "-d", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	flagx.SecondsVar(fs, &cfg.OnlineCheckInterval, "i", "online check interval (in seconds)")
	flagx.SecondsVar(fs, &cfg.SyncInterval, "s", "sync interval (in seconds)")
	flagx.SecondsVar(fs, &cfg.IdleTimeout, "l", "idle lock timeout (in seconds)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database file")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address, empty to disable")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
