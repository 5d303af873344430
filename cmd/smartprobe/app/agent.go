// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/ironcore-dev/smartprobe/internal/config"
	"github.com/ironcore-dev/smartprobe/internal/probe"
	"github.com/ironcore-dev/smartprobe/internal/smart"
)

const registrationBackoff = time.Second

func NewAgentCommand() *cobra.Command {
	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Periodically read all drives, expose metrics and register with a registry",
		Args:  cobra.NoArgs,
		RunE:  runAgent,
	}
	addDeviceFlags(agentCmd)
	addReadFlags(agentCmd)
	agentCmd.Flags().String("registry-url", "", "Registry URL where the probe will register itself.")
	agentCmd.Flags().String("system-uuid", "", "System UUID to register with the registry. Defaults to the SMBIOS system UUID.")
	agentCmd.Flags().Duration("interval", config.DefaultInterval, "Interval between two collections.")
	agentCmd.Flags().Duration("registration-timeout", config.DefaultRegistrationTimeout, "Timeout of a single registration request.")
	agentCmd.Flags().StringSlice("device", nil, "Devices to read instead of enumerating the host.")
	agentCmd.Flags().String("metrics-bind-address", config.DefaultMetricsBindAddress, "The address the metrics endpoint binds to. Use 0 to disable it.")
	return agentCmd
}

func runAgent(cmd *cobra.Command, _ []string) error {
	log := ctrl.Log.WithName("agent")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	command, err := smart.ParseCommand(cfg.Command)
	if err != nil {
		return err
	}
	systemUUID := cfg.SystemUUID
	if cfg.RegistryURL != "" {
		if systemUUID, err = probe.ResolveSystemUUID(cfg.SystemUUID, probe.CollectSystemInfo); err != nil {
			return fmt.Errorf("system UUID is missing: %w", err)
		}
	}

	reader := smart.NewReader(log.WithName("reader"), smart.NewHostOpener(), command)
	agent := probe.NewAgent(log, systemUUID, cfg.RegistryURL, registrationBackoff, cfg.Interval.Duration, reader)
	agent.Concurrency = cfg.Concurrency
	agent.ListDevices = blockLister(cfg)
	agent.Client = &http.Client{Timeout: cfg.RegistrationTimeout.Duration}
	agent.Metrics = probe.NewSMARTCollector(metrics.Registry)

	g, ctx := errgroup.WithContext(cmd.Context())
	if cfg.MetricsBindAddress != "0" {
		g.Go(func() error {
			return serveMetrics(ctx, log, cfg.MetricsBindAddress)
		})
	}
	g.Go(func() error {
		log.Info("Starting probe agent", "uuid", systemUUID, "registry", cfg.RegistryURL, "interval", cfg.Interval)
		return agent.Start(ctx)
	})
	return g.Wait()
}

func serveMetrics(ctx context.Context, log logr.Logger, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Serving metrics", "address", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server ListenAndServe: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.WithoutCancel(ctx))
	case err := <-errChan:
		return err
	}
}
