// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	"bytes"
	"fmt"
	"strings"
)

// BusType is the STORAGE_BUS_TYPE reported in a device descriptor.
type BusType uint32

const (
	BusTypeUnknown BusType = iota
	BusTypeScsi
	BusTypeAtapi
	BusTypeAta
	BusType1394
	BusTypeSsa
	BusTypeFibre
	BusTypeUsb
	BusTypeRAID
	BusTypeiScsi
	BusTypeSas
	BusTypeSata
	BusTypeSd
	BusTypeMmc
	BusTypeVirtual
	BusTypeFileBackedVirtual
	BusTypeSpaces
	BusTypeNvme
	BusTypeSCM
	BusTypeUfs
	BusTypeMax
	BusTypeMaxReserved BusType = 0x7F
)

var busTypeNames = map[BusType]string{
	BusTypeUnknown:           "Unknown",
	BusTypeScsi:              "SCSI",
	BusTypeAtapi:             "ATAPI",
	BusTypeAta:               "ATA",
	BusType1394:              "1394",
	BusTypeSsa:               "SSA",
	BusTypeFibre:             "Fibre",
	BusTypeUsb:               "USB",
	BusTypeRAID:              "RAID",
	BusTypeiScsi:             "iSCSI",
	BusTypeSas:               "SAS",
	BusTypeSata:              "SATA",
	BusTypeSd:                "SD",
	BusTypeMmc:               "MMC",
	BusTypeVirtual:           "Virtual",
	BusTypeFileBackedVirtual: "FileBackedVirtual",
	BusTypeSpaces:            "Spaces",
	BusTypeNvme:              "NVMe",
	BusTypeSCM:               "SCM",
	BusTypeUfs:               "UFS",
	BusTypeMax:               "Max",
	BusTypeMaxReserved:       "MaxReserved",
}

func (b BusType) String() string {
	if name, ok := busTypeNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BusType(%d)", uint32(b))
}

// DeviceDescriptor is a parsed STORAGE_DEVICE_DESCRIPTOR together with the bytes it was
// parsed from. The string accessors resolve their offsets against those bytes only.
type DeviceDescriptor struct {
	Version               uint32
	Size                  uint32
	DeviceType            byte
	DeviceTypeModifier    byte
	RemovableMedia        bool
	CommandQueueing       bool
	VendorIDOffset        uint32
	ProductIDOffset       uint32
	ProductRevisionOffset uint32
	SerialNumberOffset    uint32
	BusType               BusType
	RawPropertiesLength   uint32

	raw []byte
}

// ParseDeviceDescriptor parses the reply of a StorageDeviceProperty query. raw must be
// truncated to the number of bytes the driver actually returned.
func ParseDeviceDescriptor(raw []byte) (DeviceDescriptor, error) {
	var d storageDeviceDescriptor
	if err := decode(raw, &d); err != nil {
		return DeviceDescriptor{}, fmt.Errorf("device descriptor has %d bytes, need %d: %w",
			len(raw), descriptorFixedSize, err)
	}
	return DeviceDescriptor{
		Version:               d.Version,
		Size:                  d.Size,
		DeviceType:            d.DeviceType,
		DeviceTypeModifier:    d.DeviceTypeModifier,
		RemovableMedia:        d.RemovableMedia != 0,
		CommandQueueing:       d.CommandQueueing != 0,
		VendorIDOffset:        d.VendorIDOffset,
		ProductIDOffset:       d.ProductIDOffset,
		ProductRevisionOffset: d.ProductRevisionOffset,
		SerialNumberOffset:    d.SerialNumberOffset,
		BusType:               d.BusType,
		RawPropertiesLength:   d.RawPropertiesLength,
		raw:                   raw,
	}, nil
}

// Raw returns the buffer the descriptor was parsed from.
func (d DeviceDescriptor) Raw() []byte {
	return d.raw
}

func (d DeviceDescriptor) VendorID() (string, bool) {
	return cString(d.raw, d.VendorIDOffset)
}

func (d DeviceDescriptor) ProductID() (string, bool) {
	return cString(d.raw, d.ProductIDOffset)
}

func (d DeviceDescriptor) ProductRevision() (string, bool) {
	return cString(d.raw, d.ProductRevisionOffset)
}

func (d DeviceDescriptor) SerialNumber() (string, bool) {
	return cString(d.raw, d.SerialNumberOffset)
}

// cString reads a NUL terminated string at offset. Offset 0 means the field is absent, as
// does an offset at or past the end of buf. A string without terminator ends at len(buf).
func cString(buf []byte, offset uint32) (string, bool) {
	if offset == 0 || uint64(offset) >= uint64(len(buf)) {
		return "", false
	}
	s := buf[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(string(s)), true
}

// descriptorBuilder lays out a STORAGE_DEVICE_DESCRIPTOR with trailing strings. Hosts that
// have no native property query use it to answer one.
type descriptorBuilder struct {
	BusType         BusType
	RemovableMedia  bool
	VendorID        string
	ProductID       string
	ProductRevision string
	SerialNumber    string
}

func (b descriptorBuilder) bytes() []byte {
	out := make([]byte, descriptorHeaderSize)
	var offsets [4]uint32
	for i, s := range []string{b.VendorID, b.ProductID, b.ProductRevision, b.SerialNumber} {
		if s == "" {
			continue
		}
		offsets[i] = uint32(len(out))
		out = append(out, s...)
		out = append(out, 0)
	}
	d := storageDeviceDescriptor{
		Version:               descriptorHeaderSize,
		Size:                  uint32(len(out)),
		VendorIDOffset:        offsets[0],
		ProductIDOffset:       offsets[1],
		ProductRevisionOffset: offsets[2],
		SerialNumberOffset:    offsets[3],
		BusType:               b.BusType,
	}
	if b.RemovableMedia {
		d.RemovableMedia = 1
	}
	copy(out, encode(d))
	return out
}
