// Package config handles loading and validating configuration from YAML
// files, PKGHEALTH_* environment variables and command-line flags. It defines
// the endpoints, release lists, HTTP client tuning, output format and logging
// settings for a run.
package config
