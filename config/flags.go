package config

import (
	"flag"
	"io"

	"github.com/stenstromen/healthviz/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   data directory with .csv files
//	-u string   credential file
//	-m string   MySQL DSN
//	-s string   session secret key
//	-otp        require TOTP codes at login (use -otp=false to disable)
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-u", "-m", "-s", "-otp", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.StringVar(&config.UsersFile, "u", config.UsersFile, "credential file")
	fs.StringVar(&config.DatabaseDSN, "m", config.DatabaseDSN, "MySQL DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")
	fs.BoolVar(&config.OTPEnabled, "otp", config.OTPEnabled, "require TOTP codes at login")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
