// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaypipes/ghw"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
)

// BlockLister lists the block devices to read.
type BlockLister func() ([]registry.BlockDevice, error)

// HostBlockLister enumerates the disks of the host, skipping names starting with one of the
// exclude prefixes.
func HostBlockLister(exclude []string) BlockLister {
	return func() ([]registry.BlockDevice, error) {
		devices, err := collectStorageInfoData()
		if err != nil {
			return nil, err
		}
		return FilterDevices(devices, exclude), nil
	}
}

// StaticBlockLister returns a BlockDevice for each of paths without enumerating the host.
func StaticBlockLister(paths []string) BlockLister {
	return func() ([]registry.BlockDevice, error) {
		devices := make([]registry.BlockDevice, 0, len(paths))
		for _, p := range paths {
			devices = append(devices, registry.BlockDevice{
				Path: p,
				Name: filepath.Base(p),
			})
		}
		return devices, nil
	}
}

// FilterDevices drops the devices whose name starts with one of the exclude prefixes.
func FilterDevices(devices []registry.BlockDevice, exclude []string) []registry.BlockDevice {
	filtered := make([]registry.BlockDevice, 0, len(devices))
	for _, d := range devices {
		if hasAnyPrefix(d.Name, exclude) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func collectStorageInfoData() ([]registry.BlockDevice, error) {
	blockStorage, err := ghw.Block(ghw.WithDisableWarnings())
	if err != nil {
		return nil, fmt.Errorf("failed to get block devices: %w", err)
	}
	blockDevices := make([]registry.BlockDevice, 0, len(blockStorage.Disks))
	for _, b := range blockStorage.Disks {
		blockDevices = append(blockDevices, registry.BlockDevice{
			Path:       devicePath(b.Name),
			Name:       b.Name,
			Rotational: b.DriveType == ghw.DriveTypeHDD,
			Removable:  b.IsRemovable,
			Vendor:     b.Vendor,
			Model:      b.Model,
			Serial:     b.SerialNumber,
			WWID:       b.WWN,
			SizeBytes:  b.SizeBytes,
		})
	}
	return blockDevices, nil
}
