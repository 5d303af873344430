// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package probe

func devicePath(name string) string {
	return "/dev/" + name
}
