package config

import "time"

// Config holds runtime settings for blogctl.
//
// Fields:
//   - ServerURL: base URL of the blog API, e.g. http://127.0.0.1:5000.
//   - SessionDB: path of the local SQLite file keeping the saved session.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerURL      string
	SessionDB      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.SessionDB = "blogctl.db"
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
