// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - Load reads optional .env files (missing files are ignored, values already
//     present in the process environment win) and parses the environment into
//     a struct described with `env` / `envDefault` tags.
//   - MustLoad panics on failure for entry points where configuration is
//     required to start.
//
// Unlike a process-wide cache, every call parses afresh and returns a value.
// The storefront App receives its configuration explicitly at construction and
// keeps it for its whole lifetime, so no hidden global state is needed.
//
// # Usage
//
//	type Config struct {
//	    APIURL  string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000/api"`
//	    Timeout time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"30s"`
//	}
//
//	cfg, err := config.Load[Config](".env")
//
// # Error Handling
//
// Parse failures match ErrParsingConfig and unreadable .env files match
// ErrLoadingEnvFile through errors.Is.
package config
