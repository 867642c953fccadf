package config

import (
	"strings"

	"github.com/spf13/viper"
)

// envPrefix namespaces the environment, e.g. DOCBLOG_DATABASE_DSN.
const envPrefix = "DOCBLOG"

// parseEnv overlays DOCBLOG_* environment variables onto config. Unset or
// empty variables leave the current value alone. List values are
// comma-separated.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	strs := map[string]*string{
		"http_addr":          &config.HTTPAddr,
		"health_addr_grpc":   &config.HealthAddrGRPC,
		"database_dsn":       &config.DatabaseDSN,
		"secret_key":         &config.SecretKey,
		"cors_parent_domain": &config.CORSParentDomain,
		"s3_root_user":       &config.S3RootUser,
		"s3_root_password":   &config.S3RootPassword,
		"s3_bucket":          &config.S3Bucket,
		"s3_region":          &config.S3Region,
		"s3_base_endpoint":   &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	ints := map[string]*int{
		"token_expire_days":          &config.TokenExpireDays,
		"cookie_expire_days":         &config.CookieExpireDays,
		"bcrypt_cost":                &config.BcryptCost,
		"rate_limit_per_minute":      &config.RateLimitPerMinute,
		"auth_rate_limit_per_minute": &config.AuthRateLimitPerMinute,
	}
	for key, dst := range ints {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	if v.IsSet("production") {
		config.Production = v.GetBool("production")
	}
	if v.IsSet("trust_proxy") {
		config.TrustProxy = v.GetBool("trust_proxy")
	}
	if v.IsSet("s3_enabled") {
		config.S3Enabled = v.GetBool("s3_enabled")
	}
	if v.IsSet("store_connect_timeout") {
		config.StoreConnectTimeout = v.GetDuration("store_connect_timeout")
	}
	if v.IsSet("store_operation_timeout") {
		config.StoreOperationTimeout = v.GetDuration("store_operation_timeout")
	}
	if v.IsSet("cors_origins") {
		config.CORSOrigins = splitList(v.GetString("cors_origins"))
	}
	if v.IsSet("document_hosts") {
		config.DocumentHosts = splitList(v.GetString("document_hosts"))
	}
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
