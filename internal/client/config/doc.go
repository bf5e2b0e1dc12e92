// Package config loads runtime configuration for the storefront CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. YAML when the name
//     ends in .yaml or .yml, JSON otherwise.
//  3. Environment variables prefixed with STOREFRONT_, optionally from a
//     .env file in the working directory.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the storefront API
//	-t int      request timeout (seconds)
//	-d string   state directory
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "https://shop.example.com",
//	  "request_timeout": "10s",
//	  "persist_session": true,
//	  "logout_policy": "optimistic"
//	}
//
// # Environment
//
//	STOREFRONT_SERVER_URL, STOREFRONT_ME_PATH, STOREFRONT_LOGIN_PATH,
//	STOREFRONT_LOGOUT_PATH, STOREFRONT_REQUEST_TIMEOUT (e.g. "5s"),
//	STOREFRONT_STATE_DIR, STOREFRONT_PERSIST_SESSION, STOREFRONT_LOGOUT_POLICY,
//	STOREFRONT_LOG_LEVEL, STOREFRONT_LOG_FORMAT
package config
