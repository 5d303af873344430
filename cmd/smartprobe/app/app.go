// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"flag"
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/ironcore-dev/smartprobe/internal/config"
	"github.com/ironcore-dev/smartprobe/internal/probe"
)

const Name string = "smartprobe"

var (
	configFile string
	zapOpts    = zap.Options{Development: true}
)

func NewCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           Name,
		Short:         "Read ATA SMART attributes from physical drives",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts), zap.WriteTo(cmd.ErrOrStderr())))
		},
	}

	goFlags := flag.NewFlagSet(Name, flag.ContinueOnError)
	zapOpts.BindFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML configuration file.")

	root.AddCommand(NewListCommand())
	root.AddCommand(NewReadCommand())
	root.AddCommand(NewAgentCommand())
	root.AddCommand(NewRegistryCommand())
	return root
}

// loadConfig loads the configuration file and environment and applies the flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.ProbeConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("registry-url") {
		cfg.RegistryURL, _ = flags.GetString("registry-url")
	}
	if flags.Changed("system-uuid") {
		cfg.SystemUUID, _ = flags.GetString("system-uuid")
	}
	if flags.Changed("interval") {
		cfg.Interval.Duration, _ = flags.GetDuration("interval")
	}
	if flags.Changed("registration-timeout") {
		cfg.RegistrationTimeout.Duration, _ = flags.GetDuration("registration-timeout")
	}
	if flags.Changed("device") {
		cfg.Devices, _ = flags.GetStringSlice("device")
	}
	if flags.Changed("exclude") {
		cfg.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("command") {
		cfg.Command, _ = flags.GetString("command")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("metrics-bind-address") {
		cfg.MetricsBindAddress, _ = flags.GetString("metrics-bind-address")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// blockLister returns the configured devices, or the enumerated host devices when none are set.
func blockLister(cfg *config.ProbeConfig) probe.BlockLister {
	if len(cfg.Devices) > 0 {
		return probe.StaticBlockLister(cfg.Devices)
	}
	return probe.HostBlockLister(cfg.Exclude)
}

func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("exclude", config.DefaultExclude, "Block device name prefixes to skip during enumeration.")
}

func addReadFlags(cmd *cobra.Command) {
	cmd.Flags().String("command", "smart", "ATA command to issue: smart (SMART READ DATA) or identify (IDENTIFY DEVICE).")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "Number of devices read in parallel.")
}
