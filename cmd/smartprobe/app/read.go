// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ironcore-dev/smartprobe/internal/probe"
	"github.com/ironcore-dev/smartprobe/internal/smart"
)

var errReadFailed = errors.New("failed to read SMART data")

func NewReadCommand() *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read [device...]",
		Short: "Read and decode the SMART attribute table of drives",
		Long: `Read and decode the SMART attribute table of the given drives, e.g. \\.\PHYSICALDRIVE0 or
/dev/sda. All drives of the host are read when none are given.`,
		RunE: runRead,
	}
	addDeviceFlags(readCmd)
	addReadFlags(readCmd)
	readCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml.")
	return readCmd
}

func runRead(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	printer, err := newPrinter(format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Devices = args
	}
	command, err := smart.ParseCommand(cfg.Command)
	if err != nil {
		return err
	}

	devices, err := blockLister(cfg)()
	if err != nil {
		return err
	}
	log := ctrl.Log.WithName("read")
	reader := smart.NewReader(log, smart.NewHostOpener(), command)
	if err := probe.ReadSMART(cmd.Context(), log, reader, devices, cfg.Concurrency); err != nil {
		return err
	}
	if err := printer(cmd.OutOrStdout(), devices); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}

	for _, d := range devices {
		if d.SMART != nil && d.SMART.Error != "" {
			return errReadFailed
		}
	}
	return nil
}
