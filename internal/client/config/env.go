package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name read by parseEnv.
const EnvPrefix = "STOREFRONT_"

// parseEnv overlays cfg with STOREFRONT_* variables. A .env file in the
// working directory is loaded first if present; variables already set in
// the process environment win over it. Unset variables leave cfg alone.
func parseEnv(cfg *Config) {
	// the file is optional
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
