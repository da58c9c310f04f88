package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config is the launcher's runtime configuration, read once at process
// start. Precedence: defaults < optional launcher.yaml < environment.
type Config struct {
	Port           int
	DatabaseURL    string
	Debug          bool
	Profile        ProfileID
	Workers        int
	RequestTimeout int
	WSGIApp        string
	AppDir         string
	PythonBin      string
	AdminBootstrap bool
	HoldingPage    bool
}

const (
	DefaultPort           = 8000
	DefaultWorkers        = 3
	DefaultRequestTimeout = 120
	DefaultWSGIApp        = "config.wsgi:application"
)

// Load reads configuration from defaults, an optional YAML file and the
// environment. path may be empty, in which case launcher.yaml in the
// working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("database_url", "")
	v.SetDefault("debug", false)
	v.SetDefault("boot_profile", string(ProfileFull))
	v.SetDefault("web_concurrency", DefaultWorkers)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("wsgi_app", DefaultWSGIApp)
	v.SetDefault("app_dir", ".")
	v.SetDefault("python_bin", "python")
	v.SetDefault("admin_bootstrap", true)
	v.SetDefault("holding_page", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("launcher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is fine; a broken one is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read launcher.yaml: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		Port:           getPositiveInt(v, "port", DefaultPort),
		DatabaseURL:    v.GetString("database_url"),
		Debug:          v.GetBool("debug"),
		Profile:        ProfileID(strings.ToLower(v.GetString("boot_profile"))),
		Workers:        getPositiveInt(v, "web_concurrency", DefaultWorkers),
		RequestTimeout: getPositiveInt(v, "request_timeout", DefaultRequestTimeout),
		WSGIApp:        v.GetString("wsgi_app"),
		AppDir:         v.GetString("app_dir"),
		PythonBin:      v.GetString("python_bin"),
		AdminBootstrap: v.GetBool("admin_bootstrap"),
		HoldingPage:    v.GetBool("holding_page"),
	}

	if !IsValidProfile(string(cfg.Profile)) {
		return nil, fmt.Errorf("unknown boot profile %q (valid: %s)", cfg.Profile, profileNames())
	}

	return cfg, nil
}

// Redacted returns a log-safe view of the configuration. DATABASE_URL may
// embed credentials, so only its scheme and host survive.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"port":            c.Port,
		"database_url":    redactURL(c.DatabaseURL),
		"debug":           c.Debug,
		"boot_profile":    string(c.Profile),
		"web_concurrency": c.Workers,
		"request_timeout": c.RequestTimeout,
		"wsgi_app":        c.WSGIApp,
		"app_dir":         c.AppDir,
		"python_bin":      c.PythonBin,
		"admin_bootstrap": c.AdminBootstrap,
		"holding_page":    c.HoldingPage,
	}
}

func redactURL(raw string) string {
	if raw == "" {
		return "(unset)"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "(set)"
	}
	return fmt.Sprintf("%s://***@%s", u.Scheme, u.Host)
}

// getPositiveInt ignores malformed or non-positive values rather than
// failing the boot over a bad scalar.
func getPositiveInt(v *viper.Viper, key string, fallback int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return fallback
}
