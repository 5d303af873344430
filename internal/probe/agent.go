// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
)

const registrationSteps = 5

type Agent struct {
	SystemUUID  string
	RegistryURL string
	// Duration is the initial registration backoff.
	Duration time.Duration
	// Interval is the time between two collections.
	Interval    time.Duration
	Concurrency int
	ListDevices BlockLister
	SystemInfo  SystemInfoFunc
	// Metrics is updated after every collection when set.
	Metrics *SMARTCollector
	Client  *http.Client

	log    logr.Logger
	reader DeviceReader

	mu     sync.RWMutex
	server *registry.Server
}

// NewAgent creates a new Agent that reads devices with reader and registers them as systemUUID
// at registryURL. Registration is skipped when registryURL is empty.
func NewAgent(log logr.Logger, systemUUID, registryURL string, duration, interval time.Duration, reader DeviceReader) *Agent {
	return &Agent{
		log:         log,
		reader:      reader,
		SystemUUID:  systemUUID,
		RegistryURL: registryURL,
		Duration:    duration,
		Interval:    interval,
		Concurrency: 1,
		ListDevices: HostBlockLister(nil),
		SystemInfo:  CollectSystemInfo,
		Client:      http.DefaultClient,
	}
}

// Server returns the inventory of the last collection, or nil before the first one.
func (a *Agent) Server() *registry.Server {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.server
}

// Collect enumerates and reads every device and publishes the result to the metrics collector.
func (a *Agent) Collect(ctx context.Context) (*registry.Server, error) {
	devices, err := a.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list block devices: %w", err)
	}
	if err := ReadSMART(ctx, a.log, a.reader, devices, a.Concurrency); err != nil {
		return nil, err
	}

	server := &registry.Server{
		Storage:     devices,
		CollectedAt: time.Now().UTC(),
	}
	if prev := a.Server(); prev != nil && prev.SystemInfo != nil {
		server.SystemInfo = prev.SystemInfo
	} else if a.SystemInfo != nil {
		info, err := a.SystemInfo()
		if err != nil {
			a.log.Error(err, "failed to collect system information")
		}
		server.SystemInfo = info
	}

	if a.Metrics != nil {
		a.Metrics.Update(devices)
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()
	return server, nil
}

// Start collects and registers immediately and then once per Interval until ctx is done.
func (a *Agent) Start(ctx context.Context) error {
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	a.run(ctx)
	for {
		select {
		case <-ctx.Done():
			a.log.Info("Probe agent stopped.")
			return nil
		case <-ticker.C:
			a.run(ctx)
		}
	}
}

func (a *Agent) run(ctx context.Context) {
	a.log.Info("Collecting SMART data ...")
	server, err := a.Collect(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.log.Error(err, "failed to collect SMART data")
		}
		return
	}
	a.log.Info("Collected SMART data", "devices", len(server.Storage))

	if a.RegistryURL == "" {
		return
	}
	if err := a.registerServer(ctx, server); err != nil {
		a.log.Error(err, "failed to register server", "url", a.RegistryURL)
		return
	}
	a.log.Info("Server registered", "uuid", a.SystemUUID)
}

// registerServer handles the server registration with exponential backoff on failure.
func (a *Agent) registerServer(ctx context.Context, server *registry.Server) error {
	jsonData, err := json.Marshal(registry.RegistrationPayload{
		SystemUUID: a.SystemUUID,
		Data:       *server,
	})
	if err != nil {
		return err
	}

	return wait.ExponentialBackoffWithContext(
		ctx,
		wait.Backoff{
			Steps:    registrationSteps,
			Duration: a.Duration,
			Factor:   2.0,
			Jitter:   0.1,
		},
		func(ctx context.Context) (bool, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.RegistryURL+"/register", bytes.NewReader(jsonData))
			if err != nil {
				return false, err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := a.Client.Do(req)
			if err != nil {
				a.log.Error(err, "failed to post registration data", "url", a.RegistryURL)
				return false, nil
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					a.log.Error(err, "failed to close response body")
				}
			}()

			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
				a.log.Info("Registry rejected registration", "url", a.RegistryURL, "status", resp.StatusCode)
				return false, nil
			}
			return true, nil
		},
	)
}
