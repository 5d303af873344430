// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

// Device is an open handle to a physical storage device.
type Device interface {
	// Control issues a synchronous device-control request and returns the number of bytes
	// written to out.
	Control(code uint32, in, out []byte) (int, error)
	Close() error
}

// Opener opens devices by identifier.
type Opener interface {
	Open(path string) (Device, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Device, error)

func (f OpenerFunc) Open(path string) (Device, error) {
	return f(path)
}

// NewHostOpener returns the Opener for the running platform.
func NewHostOpener() Opener {
	return hostOpener{}
}
