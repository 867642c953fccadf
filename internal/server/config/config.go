// Package config handles configuration for the blog server: defaults, an
// optional JSON file, DOCBLOG_* environment variables and command-line flags,
// applied in that order.
package config

import "time"

// Config holds runtime settings for the server. It is built once at startup
// and treated as read-only afterwards.
//
// Fields:
//   - HTTPAddr: bind address of the JSON API.
//   - HealthAddrGRPC: bind address of the gRPC health service; empty disables it.
//   - DatabaseDSN: postgres://, mongodb:// or memory:// store location.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - TokenExpireDays / CookieExpireDays: bearer token and cookie lifetimes.
//   - Production: hides internal error details and marks cookies Secure.
//   - CORSOrigins / CORSParentDomain: explicit origin allow-list plus one
//     parent domain whose https subdomains are allowed.
//   - TrustProxy: take the client address from X-Forwarded-For / X-Real-IP.
//     Only set it behind a proxy that overwrites those headers.
//   - StoreConnectTimeout / StoreOperationTimeout: bounds for store calls.
//   - S3*: object storage for image bytes; used only when S3Enabled is set.
type Config struct {
	HTTPAddr               string
	HealthAddrGRPC         string
	DatabaseDSN            string
	SecretKey              string
	TokenExpireDays        int
	CookieExpireDays       int
	Production             bool
	CORSOrigins            []string
	CORSParentDomain       string
	DocumentHosts          []string
	TrustProxy             bool
	StoreConnectTimeout    time.Duration
	StoreOperationTimeout  time.Duration
	BcryptCost             int
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int
	S3Enabled              bool
	S3RootUser             string
	S3RootPassword         string
	S3Bucket               string
	S3Region               string
	S3BaseEndpoint         string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret and S3 credentials are insecure and must be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.HealthAddrGRPC = ":50051"
	c.DatabaseDSN = "memory://"
	c.SecretKey = "secretKey"
	c.TokenExpireDays = 30
	c.CookieExpireDays = 30
	c.Production = false
	c.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	c.CORSParentDomain = ""
	c.DocumentHosts = []string{"docs.google.com", "drive.google.com"}
	c.TrustProxy = false
	c.StoreConnectTimeout = 10 * time.Second
	c.StoreOperationTimeout = 5 * time.Second
	c.BcryptCost = 10
	c.RateLimitPerMinute = 300
	c.AuthRateLimitPerMinute = 20
	c.S3Enabled = false
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "blog-images"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// TokenValidity is TokenExpireDays as a duration.
func (c *Config) TokenValidity() time.Duration {
	return time.Duration(c.TokenExpireDays) * 24 * time.Hour
}

// CookieValidity is CookieExpireDays as a duration.
func (c *Config) CookieValidity() time.Duration {
	return time.Duration(c.CookieExpireDays) * 24 * time.Hour
}

// LoadConfig builds a Config by applying defaults, then the optional JSON
// file, then the environment, and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
