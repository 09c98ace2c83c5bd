package config

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/pkghealth/internal/healthcheck"
	"github.com/angeloszaimis/pkghealth/internal/output"
	"github.com/angeloszaimis/pkghealth/internal/release"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const envPrefix = "PKGHEALTH"

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"user":           "user",
	"format":         "output.format",
	"log-level":      "logging.level",
	"network-policy": "healthcheck.network_policy",
	"environment":    "environment",
}

type OwnersConfig struct {
	URL       string `mapstructure:"url"`
	Namespace string `mapstructure:"namespace"`
}

type HealthCheckConfig struct {
	URLTemplate   string `mapstructure:"url_template"`
	NetworkPolicy string `mapstructure:"network_policy"`
}

type ReleasesConfig struct {
	EPEL    []int `mapstructure:"epel"`
	Fedora  []int `mapstructure:"fedora"`
	Rawhide int   `mapstructure:"rawhide"`
}

type HTTPConfig struct {
	Timeout           string  `mapstructure:"timeout"`
	UserAgent         string  `mapstructure:"user_agent"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type BreakerConfig struct {
	Threshold int    `mapstructure:"threshold"`
	Timeout   string `mapstructure:"timeout"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	AddSource  bool   `mapstructure:"add_source"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type Config struct {
	Environment string            `mapstructure:"environment"`
	User        string            `mapstructure:"user"`
	Owners      OwnersConfig      `mapstructure:"owners"`
	HealthCheck HealthCheckConfig `mapstructure:"healthcheck"`
	Releases    ReleasesConfig    `mapstructure:"releases"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Breaker     BreakerConfig     `mapstructure:"breaker"`
	Output      OutputConfig      `mapstructure:"output"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDev)
	v.SetDefault("user", "")
	v.SetDefault("owners.url", "https://src.fedoraproject.org/extras/pagure_owner_alias.json")
	v.SetDefault("owners.namespace", "rpms")
	v.SetDefault("healthcheck.url_template", "https://pagure.io/fedora-health-check/raw/master/f/data/report-{id}.json")
	v.SetDefault("healthcheck.network_policy", string(healthcheck.PolicyFatal))
	v.SetDefault("releases.epel", []int{6, 7, 8})
	v.SetDefault("releases.fedora", []int{30, 31, 32})
	v.SetDefault("releases.rawhide", 0)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", "pkghealth/1.0")
	v.SetDefault("http.requests_per_second", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("breaker.threshold", 5)
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("output.format", output.FormatJSON)
	v.SetDefault("logging.level", LogLevelWarn)
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
}

// Load reads configuration from configFile (or config.yaml in ./config or
// the working directory when empty), the environment and any flags that
// were set explicitly.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// ReleaseSet builds the release set the configuration describes.
func (c *Config) ReleaseSet() (release.Set, error) {
	return release.NewSet(c.Releases.EPEL, c.Releases.Fedora, c.Releases.Rawhide)
}

// HTTPTimeout returns the parsed request timeout. Validate guarantees it parses.
func (c *Config) HTTPTimeout() time.Duration {
	d, _ := time.ParseDuration(c.HTTP.Timeout)
	return d
}

func (c *Config) BreakerTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Breaker.Timeout)
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.Owners,
			validation.Required,
			validation.By(func(value interface{}) error {
				oc, ok := value.(OwnersConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an OwnersConfig")
				}
				return validation.ValidateStruct(&oc,
					validation.Field(&oc.URL,
						validation.Required,
						validation.By(validateSourceURL),
					),
					validation.Field(&oc.Namespace, validation.Required),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.URLTemplate,
						validation.Required,
						validation.By(validateURLTemplate),
					),
					validation.Field(&hc.NetworkPolicy,
						validation.Required,
						validation.In(string(healthcheck.PolicyFatal), string(healthcheck.PolicyDegrade)),
					),
				)
			}),
		),
		validation.Field(&c.Releases,
			validation.Required,
			validation.By(func(value interface{}) error {
				rc, ok := value.(ReleasesConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ReleasesConfig")
				}
				if err := validation.ValidateStruct(&rc,
					validation.Field(&rc.Fedora,
						validation.Required,
						validation.Length(1, 0),
						validation.Each(validation.Min(1)),
					),
					validation.Field(&rc.EPEL,
						validation.Each(validation.Min(1)),
					),
					validation.Field(&rc.Rawhide, validation.Min(0)),
				); err != nil {
					return err
				}
				if _, err := release.NewSet(rc.EPEL, rc.Fedora, rc.Rawhide); err != nil {
					return validation.NewError("validation_invalid_releases", err.Error())
				}
				return nil
			}),
		),
		validation.Field(&c.HTTP,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HTTPConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an HTTPConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&hc.UserAgent, validation.Required, is.PrintableASCII),
					validation.Field(&hc.RequestsPerSecond, validation.Min(0.0)),
					validation.Field(&hc.Burst, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.Breaker,
			validation.Required,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.Threshold,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&bc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Output,
			validation.Required,
			validation.By(func(value interface{}) error {
				oc, ok := value.(OutputConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an OutputConfig")
				}
				return validation.ValidateStruct(&oc,
					validation.Field(&oc.Format,
						validation.Required,
						validation.In(anyOf(output.Formats)...),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
					validation.Field(&lc.MaxSize, validation.Min(0)),
					validation.Field(&lc.MaxBackups, validation.Min(0)),
					validation.Field(&lc.MaxAge, validation.Min(0)),
				)
			}),
		),
	)
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}
	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be positive")
	}

	return nil
}

func validateSourceURL(value interface{}) error {
	sourceURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if sourceURL == "" {
		return validation.NewError("validation_empty_url", "URL cannot be empty")
	}

	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validateURLTemplate(value interface{}) error {
	template, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.Contains(template, "{id}") {
		return validation.NewError("validation_missing_placeholder", "template must contain {id}")
	}

	return validateSourceURL(strings.ReplaceAll(template, "{id}", "rawhide"))
}

func anyOf(values []string) []interface{} {
	elements := make([]interface{}, len(values))
	for i, v := range values {
		elements[i] = v
	}
	return elements
}
