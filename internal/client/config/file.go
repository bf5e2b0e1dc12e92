package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used only for decoding config files. Fields left out
// of the file stay nil and do not override earlier values.
type FileConfig struct {
	ServerURL      *string         `json:"server_url" yaml:"server_url"`
	MePath         *string         `json:"me_path" yaml:"me_path"`
	LoginPath      *string         `json:"login_path" yaml:"login_path"`
	LogoutPath     *string         `json:"logout_path" yaml:"logout_path"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	StateDir       *string         `json:"state_dir" yaml:"state_dir"`
	PersistSession *bool           `json:"persist_session" yaml:"persist_session"`
	LogoutPolicy   *string         `json:"logout_policy" yaml:"logout_policy"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c or -config. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON. Without the flag
// nothing happens.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setIf(&cfg.ServerURL, fc.ServerURL)
	setIf(&cfg.MePath, fc.MePath)
	setIf(&cfg.LoginPath, fc.LoginPath)
	setIf(&cfg.LogoutPath, fc.LogoutPath)
	setIf(&cfg.StateDir, fc.StateDir)
	setIf(&cfg.PersistSession, fc.PersistSession)
	setIf(&cfg.LogoutPolicy, fc.LogoutPolicy)
	setIf(&cfg.LogLevel, fc.LogLevel)
	setIf(&cfg.LogFormat, fc.LogFormat)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
