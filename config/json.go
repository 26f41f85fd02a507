package config

import (
	"encoding/json"
	"os"

	"github.com/stenstromen/healthviz/flagx"
)

// JsonConfig mirrors Config for unmarshalling. Pointer fields distinguish
// "absent" from the zero value so a partial file only overrides what it sets.
type JsonConfig struct {
	ListenAddr    *string `json:"listen_addr"`
	DataDir       *string `json:"data_dir"`
	UsersFile     *string `json:"users_file"`
	DatabaseDSN   *string `json:"database_dsn"`
	SessionSecret *string `json:"session_secret"`
	OTPEnabled    *bool   `json:"otp_enabled"`
	LogLevel      *string `json:"log_level"`
}

// parseJSON overlays the file named by -c/-config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DataDir, c.DataDir)
	setString(&config.UsersFile, c.UsersFile)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.LogLevel, c.LogLevel)
	if c.OTPEnabled != nil {
		config.OTPEnabled = *c.OTPEnabled
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
