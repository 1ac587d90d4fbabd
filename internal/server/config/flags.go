package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/datingapp/internal/flagx"
)

var settingFlags = []string{"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-l", "-o"}

// FlagNames are the command-line flags consumed by LoadConfig, including the
// JSON config path.
var FlagNames = append([]string{"-c", "-config"}, settingFlags...)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//	-o string   comma separated websocket origins
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so the admin CLI can keep its own subcommands and flags.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], settingFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 photo bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.Var(flagx.CSV{Values: &config.AllowedOrigins}, "o", "allowed websocket origins, comma separated")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
