package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// parseEnv loads envFile when present, then overlays the variables below.
// Variables already set in the process environment win over the file.
//
//	HEALTHVIZ_ADDR, HEALTHVIZ_DATA_DIR, HEALTHVIZ_USERS_FILE,
//	MYSQL_DSN, SESSION_SECRET_KEY, HEALTHVIZ_OTP, HEALTHVIZ_LOG_LEVEL
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	lookup(&config.ListenAddr, "HEALTHVIZ_ADDR")
	lookup(&config.DataDir, "HEALTHVIZ_DATA_DIR")
	lookup(&config.UsersFile, "HEALTHVIZ_USERS_FILE")
	lookup(&config.DatabaseDSN, "MYSQL_DSN")
	lookup(&config.SessionSecret, "SESSION_SECRET_KEY")
	lookup(&config.LogLevel, "HEALTHVIZ_LOG_LEVEL")

	if v, ok := os.LookupEnv("HEALTHVIZ_OTP"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		config.OTPEnabled = b
	}
	return nil
}

func lookup(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
