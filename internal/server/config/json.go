package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/docblog/internal/flagx"
	"github.com/dmitrijs2005/docblog/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	HTTPAddr               string          `json:"http_addr"`
	HealthAddrGRPC         *string         `json:"health_addr_grpc"`
	DatabaseDSN            string          `json:"database_dsn"`
	SecretKey              string          `json:"secret_key"`
	TokenExpireDays        int             `json:"token_expire_days"`
	CookieExpireDays       int             `json:"cookie_expire_days"`
	Production             *bool           `json:"production"`
	CORSOrigins            []string        `json:"cors_origins"`
	CORSParentDomain       string          `json:"cors_parent_domain"`
	DocumentHosts          []string        `json:"document_hosts"`
	TrustProxy             *bool           `json:"trust_proxy"`
	StoreConnectTimeout    *timex.Duration `json:"store_connect_timeout"`
	StoreOperationTimeout  *timex.Duration `json:"store_operation_timeout"`
	BcryptCost             int             `json:"bcrypt_cost"`
	RateLimitPerMinute     int             `json:"rate_limit_per_minute"`
	AuthRateLimitPerMinute int             `json:"auth_rate_limit_per_minute"`
	S3Enabled              *bool           `json:"s3_enabled"`
	S3RootUser             string          `json:"s3_root_user"`
	S3RootPassword         string          `json:"s3_root_password"`
	S3Bucket               string          `json:"s3_bucket"`
	S3Region               string          `json:"s3_region"`
	S3BaseEndpoint         string          `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Keys missing from the file keep their current value. A file that cannot
// be read or decoded is a startup error and panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.HealthAddrGRPC != nil {
		config.HealthAddrGRPC = *c.HealthAddrGRPC
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setInt(&config.TokenExpireDays, c.TokenExpireDays)
	setInt(&config.CookieExpireDays, c.CookieExpireDays)
	if c.Production != nil {
		config.Production = *c.Production
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	setString(&config.CORSParentDomain, c.CORSParentDomain)
	if c.DocumentHosts != nil {
		config.DocumentHosts = c.DocumentHosts
	}
	if c.TrustProxy != nil {
		config.TrustProxy = *c.TrustProxy
	}
	if c.StoreConnectTimeout != nil {
		config.StoreConnectTimeout = c.StoreConnectTimeout.Duration
	}
	if c.StoreOperationTimeout != nil {
		config.StoreOperationTimeout = c.StoreOperationTimeout.Duration
	}
	setInt(&config.BcryptCost, c.BcryptCost)
	setInt(&config.RateLimitPerMinute, c.RateLimitPerMinute)
	setInt(&config.AuthRateLimitPerMinute, c.AuthRateLimitPerMinute)
	if c.S3Enabled != nil {
		config.S3Enabled = *c.S3Enabled
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
