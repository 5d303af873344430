// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	fileAnyAccess   = 0
	fileReadAccess  = 1
	fileWriteAccess = 2
	methodBuffered  = 0

	ioctlDiskBase    = 0x00000007
	ioctlStorageBase = 0x0000002D
)

func ctlCode(deviceType, function, method, access uint32) uint32 {
	return (deviceType << 16) | (access << 14) | (function << 2) | method
}

var (
	// IOCTLStorageQueryProperty asks the storage stack for a device property.
	IOCTLStorageQueryProperty = ctlCode(ioctlStorageBase, 0x0500, methodBuffered, fileAnyAccess)
	// SMARTRcvDriveData sends an ATA task file to the drive and receives one data sector.
	SMARTRcvDriveData = ctlCode(ioctlDiskBase, 0x0022, methodBuffered, fileReadAccess|fileWriteAccess)
)

// ATA task file values.
const (
	ATACommandSMART    byte = 0xB0
	ATACommandIdentify byte = 0xEC

	SMARTFeatureReadData byte = 0xD0

	SMARTCylLow  byte = 0x4F
	SMARTCylHigh byte = 0xC2

	driveHeadBase byte = 0xA0
)

const (
	// SectorSize is the size of the data sector returned by SMART READ DATA and IDENTIFY.
	SectorSize = 512

	ideRegsSize              = 8
	sendCmdInParamsSize      = 33
	driverStatusSize         = 12
	sendCmdOutParamsHeader   = 4 + driverStatusSize
	sendCmdOutParamsSize     = sendCmdOutParamsHeader + SectorSize
	storagePropertyQuerySize = 12

	// descriptorFixedSize covers the fields up to and including RawPropertiesLength.
	descriptorFixedSize = 36
	// descriptorHeaderSize is sizeof(STORAGE_DEVICE_DESCRIPTOR) including RawDeviceProperties
	// and tail alignment.
	descriptorHeaderSize = 40
	descriptorSlack      = 512
)

// StoragePropertyID selects the property returned by IOCTLStorageQueryProperty.
type StoragePropertyID uint32

const StorageDeviceProperty StoragePropertyID = 0

// StorageQueryType selects how the property query is answered.
type StorageQueryType uint32

const PropertyStandardQuery StorageQueryType = 0

// StoragePropertyQuery is the input of IOCTLStorageQueryProperty.
type StoragePropertyQuery struct {
	PropertyID           StoragePropertyID
	QueryType            StorageQueryType
	AdditionalParameters [1]byte
	_                    [3]byte
}

// IDERegs is the ATA task file.
type IDERegs struct {
	Features     byte
	SectorCount  byte
	SectorNumber byte
	CylLow       byte
	CylHigh      byte
	DriveHead    byte
	Command      byte
	Reserved     byte
}

// SendCmdInParams is the input of SMARTRcvDriveData.
type SendCmdInParams struct {
	// BufferSize must equal the size of IDERegs.
	BufferSize  uint32
	DriveRegs   IDERegs
	DriveNumber byte
	_           [3]byte
	_           [4]uint32
	Buffer      [1]byte
}

// DriverStatus reports the driver and IDE status of a pass-through command.
type DriverStatus struct {
	DriverError byte
	IDEStatus   byte
	_           [2]byte
	_           [2]uint32
}

// SendCmdOutParams is the output of SMARTRcvDriveData.
type SendCmdOutParams struct {
	BufferSize   uint32
	DriverStatus DriverStatus
	Buffer       [SectorSize]byte
}

// storageDeviceDescriptor is the fixed part of STORAGE_DEVICE_DESCRIPTOR.
type storageDeviceDescriptor struct {
	Version               uint32
	Size                  uint32
	DeviceType            byte
	DeviceTypeModifier    byte
	RemovableMedia        byte
	CommandQueueing       byte
	VendorIDOffset        uint32
	ProductIDOffset       uint32
	ProductRevisionOffset uint32
	SerialNumberOffset    uint32
	BusType               BusType
	RawPropertiesLength   uint32
}

func init() {
	sizes := []struct {
		name string
		v    any
		want int
	}{
		{"StoragePropertyQuery", StoragePropertyQuery{}, storagePropertyQuerySize},
		{"IDERegs", IDERegs{}, ideRegsSize},
		{"SendCmdInParams", SendCmdInParams{}, sendCmdInParamsSize},
		{"DriverStatus", DriverStatus{}, driverStatusSize},
		{"SendCmdOutParams", SendCmdOutParams{}, sendCmdOutParamsSize},
		{"STORAGE_DEVICE_DESCRIPTOR", storageDeviceDescriptor{}, descriptorFixedSize},
		{"Attribute", wireAttribute{}, AttributeSize},
	}
	for _, s := range sizes {
		if got := binary.Size(s.v); got != s.want {
			panic(fmt.Sprintf("smart: %s encodes to %d bytes, want %d", s.name, got, s.want))
		}
	}
}

// encode writes v in the packed little endian layout the storage stack expects.
func encode(v any) []byte {
	var buf bytes.Buffer
	buf.Grow(binary.Size(v))
	// Writing fixed-size structs into a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func decode(b []byte, v any) error {
	if len(b) < binary.Size(v) {
		return ErrShortResponse
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, v)
}
