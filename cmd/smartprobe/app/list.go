// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the physical drives of this host",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	addDeviceFlags(listCmd)
	return listCmd
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	devices, err := blockLister(cfg)()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(devices) == 0 {
		_, err := fmt.Fprintln(out, "No physical drives found.")
		return err
	}
	for _, d := range devices {
		if _, err := fmt.Fprintln(out, d.Path); err != nil {
			return err
		}
	}
	return nil
}
