// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package probe

import "strings"

const physicalDrivePrefix = `\\.\`

// devicePath maps a disk name to its device namespace path. ghw already reports Win32_DiskDrive
// DeviceIDs such as \\.\PHYSICALDRIVE0.
func devicePath(name string) string {
	if strings.HasPrefix(name, physicalDrivePrefix) {
		return name
	}
	return physicalDrivePrefix + name
}
