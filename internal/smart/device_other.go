// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows && !linux

package smart

type hostOpener struct{}

func (hostOpener) Open(string) (Device, error) {
	return nil, ErrUnsupportedPlatform
}
