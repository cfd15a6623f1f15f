// Package config loads and validates the suite configuration.
//
// Configuration comes from an optional YAML file merged with environment
// variables prefixed STACKPROOF_ (e.g. STACKPROOF_CLOUD_REGION). Defaults
// are declared on the struct fields and applied before decoding, so a file
// only needs the values that differ. Nothing in this package is a global:
// Load returns a value that callers pass down explicitly.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Cloud locates the deployed infrastructure.
type Cloud struct {
	Region         string `mapstructure:"region" default:"eu-west-1"`
	Profile        string `mapstructure:"profile"`
	ResourcePrefix string `mapstructure:"resource_prefix" default:"vault"`
}

// App locates the application under test.
type App struct {
	BaseURL    string        `mapstructure:"base_url"`
	AuthSecret string        `mapstructure:"auth_secret"`
	Issuer     string        `mapstructure:"issuer" default:"stackproof"`
	Timeout    time.Duration `mapstructure:"timeout" default:"30s"`
}

// Mailbox locates the mail capture service and bounds notification polling.
type Mailbox struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIToken  string        `mapstructure:"api_token"`
	InboxID   string        `mapstructure:"inbox_id"`
	Recipient string        `mapstructure:"recipient"`
	Attempts  int           `mapstructure:"attempts" default:"10"`
	Interval  time.Duration `mapstructure:"interval" default:"10s"`
}

// Report configures where validation runs are recorded.
type Report struct {
	Path string `mapstructure:"path" default:"stackproof.db"`
}

// Configuration is the root of the suite configuration.
type Configuration struct {
	Cloud    Cloud   `mapstructure:"cloud"`
	App      App     `mapstructure:"app"`
	Mailbox  Mailbox `mapstructure:"mailbox"`
	Report   Report  `mapstructure:"report"`
	LogLevel string  `mapstructure:"log_level" default:"info"`
}

// Load reads the configuration file at path (optional when empty, required
// to exist when given) and merges STACKPROOF_* environment variables over it.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix("STACKPROOF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration %q: %w", path, err)
		}
	} else {
		v.SetConfigName("stackproof")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read configuration: %w", err)
			}
		}
	}

	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no run can work without.
func (c *Configuration) Validate() error {
	if c.Cloud.Region == "" {
		return errors.New("cloud.region is empty")
	}
	if c.Cloud.ResourcePrefix == "" {
		return errors.New("cloud.resource_prefix is empty")
	}
	if c.Mailbox.Attempts < 1 {
		return fmt.Errorf("mailbox.attempts must be at least 1, got %d", c.Mailbox.Attempts)
	}
	if c.Mailbox.Interval < 0 {
		return fmt.Errorf("mailbox.interval must not be negative, got %s", c.Mailbox.Interval)
	}
	for name, raw := range map[string]string{
		"app.base_url":     c.App.BaseURL,
		"mailbox.base_url": c.Mailbox.BaseURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not a valid URL: %q", name, raw)
		}
	}
	return nil
}
