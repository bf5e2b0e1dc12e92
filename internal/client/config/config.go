package config

import (
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/filex"
)

// Config holds runtime settings for the storefront CLI.
//
// RequestTimeout of zero means requests wait as long as the server takes.
type Config struct {
	ServerURL      string        `env:"SERVER_URL"`
	MePath         string        `env:"ME_PATH"`
	LoginPath      string        `env:"LOGIN_PATH"`
	LogoutPath     string        `env:"LOGOUT_PATH"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	StateDir       string        `env:"STATE_DIR"`
	PersistSession bool          `env:"PERSIST_SESSION"`
	LogoutPolicy   string        `env:"LOGOUT_POLICY"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogFormat      string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.MePath = common.DefaultMePath
	c.LoginPath = common.DefaultLoginPath
	c.LogoutPath = common.DefaultLogoutPath
	c.RequestTimeout = 0
	c.StateDir = filex.DefaultStateDir()
	c.PersistSession = true
	c.LogoutPolicy = "conservative"
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given), the environment and command-line flags. Later
// sources take precedence over earlier ones. It panics on unreadable input.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
