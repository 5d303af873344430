// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// Command selects the ATA command issued through the pass-through.
type Command int

const (
	// CommandSmartReadData issues SMART READ DATA (B0h/D0h).
	CommandSmartReadData Command = iota
	// CommandIdentify issues IDENTIFY DEVICE (ECh). Older versions of this tool sent it
	// instead of SMART READ DATA; the attribute table decoded from it is not SMART data.
	CommandIdentify
)

func (c Command) String() string {
	switch c {
	case CommandSmartReadData:
		return "smart"
	case CommandIdentify:
		return "identify"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand maps the names returned by Command.String back to a Command.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(s) {
	case "", "smart":
		return CommandSmartReadData, nil
	case "identify":
		return CommandIdentify, nil
	default:
		return 0, fmt.Errorf("unknown command %q, must be one of smart, identify", s)
	}
}

// Result is the outcome of a successful acquisition.
type Result struct {
	Device      string
	DriveNumber byte
	Command     Command
	Descriptor  DeviceDescriptor
	// ProductID is empty when HasProductID is false.
	ProductID    string
	HasProductID bool
	DriverStatus DriverStatus
	// Data is the sector returned by the drive.
	Data       [SectorSize]byte
	Attributes []Attribute
	// Identity is only set for CommandIdentify.
	Identity *Identity
}

// Reader reads SMART data from one device per call. A Reader holds no per-device state and
// may be used from several goroutines as long as they read different devices.
type Reader struct {
	log     logr.Logger
	opener  Opener
	command Command
}

// NewReader creates a Reader that opens devices with opener and issues command.
func NewReader(log logr.Logger, opener Opener, command Command) *Reader {
	return &Reader{
		log:     log,
		opener:  opener,
		command: command,
	}
}

// Read opens path, queries its device descriptor, retrieves the SMART data sector and decodes
// the attribute table. Decoding covers only the 30 table slots that precede the vendor and
// checksum bytes of the sector. Errors are *Error values matching ErrOpenFailed, ErrQueryFailed or
// ErrRetrieveFailed.
func (r *Reader) Read(path string) (*Result, error) {
	log := r.log.WithValues("device", path)

	dev, err := r.opener.Open(path)
	if err != nil {
		return nil, newError(OpOpen, path, err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Error(err, "failed to close device")
		}
	}()

	desc, err := queryDescriptor(dev)
	if err != nil {
		return nil, newError(OpQuery, path, err)
	}
	res := &Result{
		Device:     path,
		Command:    r.command,
		Descriptor: desc,
	}
	res.ProductID, res.HasProductID = desc.ProductID()
	log.V(1).Info("Queried device descriptor", "product", res.ProductID, "bus", desc.BusType)

	drive, err := DriveNumber(path)
	if err != nil {
		return nil, newError(OpRetrieve, path, err)
	}
	res.DriveNumber = drive

	out, err := retrieve(dev, r.command, drive)
	if err != nil {
		e := newError(OpRetrieve, path, err)
		if errors.Is(err, ErrDriverError) {
			e.Code = uint32(out.DriverStatus.DriverError)
		}
		return nil, e
	}
	res.DriverStatus = out.DriverStatus
	res.Data = out.Buffer
	res.Attributes = DecodeAttributes(attributeTable(res.Data[:]))
	if r.command == CommandIdentify {
		if id, ok := ParseIdentity(res.Data[:]); ok {
			res.Identity = &id
		}
	}
	log.V(1).Info("Read SMART data", "attributes", len(res.Attributes))
	return res, nil
}

func queryDescriptor(dev Device) (DeviceDescriptor, error) {
	query := StoragePropertyQuery{
		PropertyID: StorageDeviceProperty,
		QueryType:  PropertyStandardQuery,
	}
	out := make([]byte, descriptorHeaderSize+descriptorSlack)
	n, err := dev.Control(IOCTLStorageQueryProperty, encode(query), out)
	if err != nil {
		return DeviceDescriptor{}, err
	}
	return ParseDeviceDescriptor(out[:n])
}

// NewSendCmdInParams builds the pass-through input for command addressed at drive.
func NewSendCmdInParams(command Command, drive byte) SendCmdInParams {
	regs := IDERegs{
		SectorCount:  1,
		SectorNumber: 1,
	}
	switch command {
	case CommandIdentify:
		regs.Command = ATACommandIdentify
	default:
		regs.Command = ATACommandSMART
		regs.Features = SMARTFeatureReadData
		regs.CylLow = SMARTCylLow
		regs.CylHigh = SMARTCylHigh
		regs.DriveHead = driveHeadBase | (drive&1)<<4
	}
	return SendCmdInParams{
		BufferSize:  ideRegsSize,
		DriveRegs:   regs,
		DriveNumber: drive,
	}
}

func retrieve(dev Device, command Command, drive byte) (SendCmdOutParams, error) {
	var res SendCmdOutParams
	out := make([]byte, sendCmdOutParamsSize)
	n, err := dev.Control(SMARTRcvDriveData, encode(NewSendCmdInParams(command, drive)), out)
	if err != nil {
		return res, err
	}
	if err := decode(out[:n], &res); err != nil {
		return res, fmt.Errorf("pass-through returned %d bytes, need %d: %w", n, sendCmdOutParamsSize, err)
	}
	if res.DriverStatus.DriverError != 0 {
		return res, ErrDriverError
	}
	return res, nil
}

// DriveNumber parses the trailing decimal digits of a device identifier, e.g. 12 for
// \\.\PHYSICALDRIVE12. Identifiers without trailing digits address drive 0.
func DriveNumber(path string) (byte, error) {
	i := len(path)
	for i > 0 && path[i-1] >= '0' && path[i-1] <= '9' {
		i--
	}
	if i == len(path) {
		return 0, nil
	}
	n, err := strconv.ParseUint(path[i:], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDriveNumber, path[i:])
	}
	return byte(n), nil
}
