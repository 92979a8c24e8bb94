package config

import (
	"github.com/dmitrijs2005/offsync/internal/flagx"
)

// JsonConfig is the on-disk form of Config. Absent keys keep their current
// values.
type JsonConfig struct {
	EndpointAddrGRPC string  `json:"endpoint_addr_grpc"`
	DatabaseDSN      string  `json:"database_dsn"`
	AdminAddr        string  `json:"admin_addr"`
	RecordBackend    string  `json:"record_backend"`
	S3RootUser       string  `json:"s3_root_user"`
	S3RootPassword   string  `json:"s3_root_password"`
	S3Bucket         string  `json:"s3_bucket"`
	S3Region         string  `json:"s3_region"`
	S3BaseEndpoint   string  `json:"s3_base_endpoint"`
	RateLimit        float64 `json:"rate_limit"`
	RateBurst        int     `json:"rate_burst"`
	LogLevel         string  `json:"log_level"`
}

// parseJson loads the file named by -c / -config into config. It panics when
// the file cannot be read or contains invalid JSON.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	c := &JsonConfig{}
	if err := flagx.LoadJSON(path, c); err != nil {
		panic(err)
	}

	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&config.EndpointAddrGRPC, c.EndpointAddrGRPC},
		{&config.DatabaseDSN, c.DatabaseDSN},
		{&config.AdminAddr, c.AdminAddr},
		{&config.RecordBackend, c.RecordBackend},
		{&config.S3RootUser, c.S3RootUser},
		{&config.S3RootPassword, c.S3RootPassword},
		{&config.S3Bucket, c.S3Bucket},
		{&config.S3Region, c.S3Region},
		{&config.S3BaseEndpoint, c.S3BaseEndpoint},
		{&config.LogLevel, c.LogLevel},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if c.RateLimit != 0 {
		config.RateLimit = c.RateLimit
	}
	if c.RateBurst != 0 {
		config.RateBurst = c.RateBurst
	}
}
