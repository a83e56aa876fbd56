// Package environment names the deployment environments the storefront client
// runs in. The logger factory picks its level and format presets from it.
//
// Parse accepts the long names ("development", "staging", "production") and the
// short aliases ("dev", "stage", "prod"). Anything else falls back to
// Development so a misspelled APP_ENV never enables production defaults.
package environment
