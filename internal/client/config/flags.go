package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/docblog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the blog API
//	-d string   session database path
//	-t int      request timeout in seconds
//
// Only these flags are taken from os.Args (see flagx.FilterArgs); the rest
// belong to the command being run.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the blog API")
	fs.StringVar(&cfg.SessionDB, "d", cfg.SessionDB, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
