// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package registry

type BlockDevice struct {
	// Path is the identifier the device was opened with, e.g. /dev/sda or \\.\PHYSICALDRIVE0.
	Path       string `json:"path"`
	Name       string `json:"name"`
	Rotational bool   `json:"rotational"`
	Removable  bool   `json:"removable"`
	Vendor     string `json:"vendor"`
	Model      string `json:"model"`
	Serial     string `json:"serial"`
	WWID       string `json:"wwid"`
	SizeBytes  uint64 `json:"sizeBytes"`
	// SMART is nil when the device was not read.
	SMART *SMARTInfo `json:"smart,omitempty"`
}

// SMARTInfo holds the decoded SMART attribute table of a device. When the device could not be
// read, Error is set and the remaining fields are empty.
type SMARTInfo struct {
	Command     string `json:"command"`
	DriveNumber uint8  `json:"driveNumber"`
	BusType     string `json:"busType,omitempty"`
	// The descriptor strings are nil when the device did not report them.
	VendorID        *string          `json:"vendorID,omitempty"`
	ProductID       *string          `json:"productID,omitempty"`
	ProductRevision *string          `json:"productRevision,omitempty"`
	SerialNumber    *string          `json:"serialNumber,omitempty"`
	Attributes      []SMARTAttribute `json:"attributes,omitempty"`
	Identity        *ATAIdentity     `json:"identity,omitempty"`
	Error           string           `json:"error,omitempty"`
}

type SMARTAttribute struct {
	ID         uint8  `json:"id"`
	Flags      uint16 `json:"flags"`
	Value      uint8  `json:"value"`
	Worst      uint8  `json:"worst"`
	Raw        uint64 `json:"raw"`
	Prefailure bool   `json:"prefailure"`
	Online     bool   `json:"online"`
}

// ATAIdentity carries the IDENTIFY DEVICE strings.
type ATAIdentity struct {
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Firmware     string `json:"firmware"`
}
