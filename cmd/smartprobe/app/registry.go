// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ironcore-dev/smartprobe/internal/registry"
)

var registryBindAddress string

func NewRegistryCommand() *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Run the registry server collecting the SMART data of probe agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return registry.NewServer(ctrl.Log.WithName("registry"), registryBindAddress).Start(cmd.Context())
		},
	}
	registryCmd.Flags().StringVar(&registryBindAddress, "bind-address", ":10000", "The address the registry server binds to.")
	return registryCmd
}
