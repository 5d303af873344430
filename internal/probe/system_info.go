// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"errors"
	"fmt"

	"github.com/siderolabs/go-smbios/smbios"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
)

// SystemInfoFunc returns the SMBIOS system information of the host.
type SystemInfoFunc func() (*registry.SystemInformation, error)

// CollectSystemInfo reads the SMBIOS system information record.
func CollectSystemInfo() (*registry.SystemInformation, error) {
	sm, err := smbios.New()
	if err != nil {
		return nil, fmt.Errorf("failed to read SMBIOS: %w", err)
	}
	si := sm.SystemInformation
	return &registry.SystemInformation{
		Manufacturer: si.Manufacturer,
		ProductName:  si.ProductName,
		Version:      si.Version,
		SerialNumber: si.SerialNumber,
		UUID:         si.UUID,
		SKUNumber:    si.SKUNumber,
		Family:       si.Family,
	}, nil
}

// ResolveSystemUUID returns uuid, or the SMBIOS system UUID when uuid is empty.
func ResolveSystemUUID(uuid string, systemInfo SystemInfoFunc) (string, error) {
	if uuid != "" {
		return uuid, nil
	}
	info, err := systemInfo()
	if err != nil {
		return "", err
	}
	if info.UUID == "" {
		return "", errors.New("SMBIOS reports no system UUID")
	}
	return info.UUID, nil
}
