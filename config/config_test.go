package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HEALTHVIZ_ADDR", "HEALTHVIZ_DATA_DIR", "HEALTHVIZ_USERS_FILE",
		"MYSQL_DSN", "SESSION_SECRET_KEY", "HEALTHVIZ_OTP", "HEALTHVIZ_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "users.csv", c.UsersFile)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.SessionSecret)
	assert.False(t, c.OTPEnabled)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET_KEY")
}

func TestLoadConfig_Layering(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"listen_addr": ":7000",
		"data_dir": "/srv/data",
		"session_secret": "from-json",
		"otp_enabled": true
	}`), 0o600))

	t.Setenv("HEALTHVIZ_DATA_DIR", "/env/data")
	t.Setenv("HEALTHVIZ_LOG_LEVEL", "debug")

	cfg, err := LoadConfig([]string{"-c", jsonPath, "-a", ":9000", "-otp=false"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, "from-json", cfg.SessionSecret)
	assert.Equal(t, "users.csv", cfg.UsersFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.OTPEnabled)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	clearEnv(t)

	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{"), 0o600))

	_, err := LoadConfig([]string{"-c", p, "-s", "x"})
	assert.Error(t, err)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	clearEnv(t)

	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("SESSION_SECRET_KEY=dotenv\nHEALTHVIZ_OTP=true\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SESSION_SECRET_KEY")
		os.Unsetenv("HEALTHVIZ_OTP")
	})

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c, p))

	assert.Equal(t, "dotenv", c.SessionSecret)
	assert.True(t, c.OTPEnabled)
}

func TestParseEnv_MissingFileIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_DSN", "user:pw@tcp(db:3306)/app")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c, filepath.Join(t.TempDir(), "none.env")))
	assert.Equal(t, "user:pw@tcp(db:3306)/app", c.DatabaseDSN)
}

func TestParseEnv_BadBool(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEALTHVIZ_OTP", "maybe")

	var c Config
	c.LoadDefaults()
	assert.Error(t, parseEnv(&c, ""))
}

func TestValidate(t *testing.T) {
	c := Config{}
	c.LoadDefaults()
	c.SessionSecret = "s"
	require.NoError(t, c.Validate())

	c.UsersFile = ""
	assert.Error(t, c.Validate())

	c.DatabaseDSN = "dsn"
	assert.NoError(t, c.Validate())
}
