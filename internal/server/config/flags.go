package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tripauth/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":8080")
//	-d string   storage DSN
//	-s string   JWT HMAC secret key
//	-t int      token validity, hours
//	-f string   token format: jwt or legacy
//	-l int      simulated latency, milliseconds
//	-x          accept any password of six or more characters
//	-k string   session sweep cron schedule
//	-o string   OTLP/HTTP trace endpoint
//	-u string   S3 root user
//	-p string   S3 root password
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is first filtered with flagx.FilterArgs so -c and other
// components' flags do not trip the flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-w", "-d", "-s", "-t", "-f", "-l", "-x", "-k", "-o", "-u", "-p", "-g", "-e"},
		"-x")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.StorageDSN, "d", config.StorageDSN, "storage DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidity.Hours()), "token validity (in hours)")
	fs.StringVar(&config.TokenFormat, "f", config.TokenFormat, "token format (jwt|legacy)")
	latency := fs.Int("l", int(config.Latency.Milliseconds()), "simulated latency (in milliseconds)")
	fs.BoolVar(&config.LegacyPasswordCheck, "x", config.LegacyPasswordCheck, "legacy password check")
	fs.StringVar(&config.SessionSweepSchedule, "k", config.SessionSweepSchedule, "session sweep cron schedule")
	fs.StringVar(&config.OTLPEndpoint, "o", config.OTLPEndpoint, "OTLP/HTTP trace endpoint")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations set in a config file may not be whole hours or
	// milliseconds, so only flags actually given overwrite them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidity = time.Duration(*tokenValidity) * time.Hour
		case "l":
			config.Latency = time.Duration(*latency) * time.Millisecond
		}
	})
}
