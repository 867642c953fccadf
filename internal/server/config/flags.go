package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/docblog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-g string   gRPC health bind address, "" disables it
//	-d string   store DSN (postgres://, mongodb://, memory://)
//	-s string   JWT HMAC secret key
//	-t int      token validity, days
//	-k int      cookie validity, days
//	-o string   comma-separated CORS origins
//	-w string   CORS parent domain for wildcard subdomains
//	-production run in production mode
//	-trust-proxy  take client IPs from X-Forwarded-For / X-Real-IP
//	-s3         store image bytes in S3
//	-u -p -b -r -e  S3 user, password, bucket, region, endpoint
//
// os.Args is filtered with flagx.FilterArgs first so -c/-config and
// unknown arguments do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-g", "-d", "-s", "-t", "-k", "-o", "-w", "-production", "-trust-proxy", "-s3",
		"-u", "-p", "-b", "-r", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the HTTP API")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "store DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.TokenExpireDays, "t", config.TokenExpireDays, "token validity (in days)")
	fs.IntVar(&config.CookieExpireDays, "k", config.CookieExpireDays, "cookie validity (in days)")
	origins := fs.String("o", strings.Join(config.CORSOrigins, ","), "comma-separated CORS origins")
	fs.StringVar(&config.CORSParentDomain, "w", config.CORSParentDomain, "CORS parent domain")
	fs.BoolVar(&config.Production, "production", config.Production, "production mode")
	fs.BoolVar(&config.TrustProxy, "trust-proxy", config.TrustProxy, "trust proxy client IP headers")
	fs.BoolVar(&config.S3Enabled, "s3", config.S3Enabled, "store images in S3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CORSOrigins = splitList(*origins)
}
