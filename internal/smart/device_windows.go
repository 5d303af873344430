// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package smart

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type hostOpener struct{}

func (hostOpener) Open(path string) (Device, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid device path %q: %w", path, err)
	}
	h, err := windows.CreateFile(
		name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, err
	}
	return &windowsDevice{handle: h}, nil
}

type windowsDevice struct {
	handle windows.Handle
}

func (d *windowsDevice) Control(code uint32, in, out []byte) (int, error) {
	var inPtr, outPtr *byte
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}
	var returned uint32
	err := windows.DeviceIoControl(
		d.handle,
		code,
		inPtr,
		uint32(len(in)),
		outPtr,
		uint32(len(out)),
		&returned,
		nil,
	)
	if err != nil {
		return 0, err
	}
	return int(returned), nil
}

func (d *windowsDevice) Close() error {
	return windows.CloseHandle(d.handle)
}
