// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the probe agent configuration from defaults, an optional YAML file
// and SMARTPROBE_ prefixed environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/smartprobe/internal/smart"
)

// EnvPrefix is prepended to the envconfig names, e.g. SMARTPROBE_REGISTRY_URL.
const EnvPrefix = "SMARTPROBE"

const (
	DefaultInterval            = 5 * time.Minute
	DefaultRegistrationTimeout = 30 * time.Second
	DefaultConcurrency         = 4
	DefaultMetricsBindAddress  = ":9810"
)

// DefaultExclude lists the block device name prefixes that never carry SMART data.
var DefaultExclude = []string{"loop", "ram", "zram", "dm-", "md", "sr"}

// Duration is a time.Duration that decodes from strings such as "30s" in YAML and in the
// environment.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.Decode(s)
}

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// ProbeConfig configures the probe agent.
type ProbeConfig struct {
	// RegistryURL is the base URL of the registry server. Registration is skipped when empty.
	RegistryURL string `json:"registryURL,omitempty" envconfig:"REGISTRY_URL"`
	// SystemUUID identifies this host at the registry. Falls back to the SMBIOS system UUID.
	SystemUUID          string   `json:"systemUUID,omitempty" envconfig:"SYSTEM_UUID"`
	Interval            Duration `json:"interval" envconfig:"INTERVAL"`
	RegistrationTimeout Duration `json:"registrationTimeout" envconfig:"REGISTRATION_TIMEOUT"`
	// Devices overrides device enumeration when set.
	Devices []string `json:"devices,omitempty" envconfig:"DEVICES"`
	// Exclude holds device name prefixes skipped during enumeration.
	Exclude            []string `json:"exclude,omitempty" envconfig:"EXCLUDE"`
	Command            string   `json:"command" envconfig:"COMMAND"`
	Concurrency        int      `json:"concurrency" envconfig:"CONCURRENCY"`
	MetricsBindAddress string   `json:"metricsBindAddress" envconfig:"METRICS_BIND_ADDRESS"`
}

// Default returns the configuration used when nothing else is set.
func Default() *ProbeConfig {
	return &ProbeConfig{
		Interval:            Duration{DefaultInterval},
		RegistrationTimeout: Duration{DefaultRegistrationTimeout},
		Exclude:             append([]string(nil), DefaultExclude...),
		Command:             smart.CommandSmartReadData.String(),
		Concurrency:         DefaultConcurrency,
		MetricsBindAddress:  DefaultMetricsBindAddress,
	}
}

// Load applies the YAML file at path, if any, and then the environment on top of Default.
func Load(path string) (*ProbeConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *ProbeConfig) Validate() error {
	var errs []error
	if c.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.RegistrationTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("registration timeout must not be negative, got %s", c.RegistrationTimeout))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if _, err := smart.ParseCommand(c.Command); err != nil {
		errs = append(errs, err)
	}
	if c.RegistryURL != "" {
		u, err := url.Parse(c.RegistryURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid registry URL: %w", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Errorf("registry URL %q must use http or https", c.RegistryURL))
		}
	}
	return errors.Join(errs...)
}
