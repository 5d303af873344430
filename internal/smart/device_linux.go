// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package smart

import (
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	hdioDriveCmdRequest = 0x031f
	// hdioDriveCmdHeader is the size of the task file prefix of an HDIO_DRIVE_CMD buffer.
	hdioDriveCmdHeader = 4
)

var pathSysClassBlock = "/sys/class/block"

// hdioDriveCmd issues HDIO_DRIVE_CMD with buf laid out as {command, sector number, features,
// sector count} followed by the data sector.
var hdioDriveCmd = func(fd int, buf []byte) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), hdioDriveCmdRequest, uintptr(unsafe.Pointer(&buf[0]))); errno != 0 {
		return errno
	}
	return nil
}

type hostOpener struct{}

func (hostOpener) Open(path string) (Device, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &linuxDevice{fd: fd, name: filepath.Base(path)}, nil
}

// linuxDevice serves the two control codes of the acquisition protocol on top of sysfs and
// the HDIO_DRIVE_CMD ioctl.
type linuxDevice struct {
	fd   int
	name string
}

func (d *linuxDevice) Control(code uint32, in, out []byte) (int, error) {
	switch code {
	case IOCTLStorageQueryProperty:
		return d.queryProperty(in, out)
	case SMARTRcvDriveData:
		return d.driveCommand(in, out)
	default:
		return 0, unix.ENOTTY
	}
}

func (d *linuxDevice) Close() error {
	return unix.Close(d.fd)
}

func (d *linuxDevice) queryProperty(in, out []byte) (int, error) {
	var q StoragePropertyQuery
	if err := decode(in, &q); err != nil {
		return 0, unix.EINVAL
	}
	if q.PropertyID != StorageDeviceProperty || q.QueryType != PropertyStandardQuery {
		return 0, unix.EOPNOTSUPP
	}
	return copy(out, d.describe().bytes()), nil
}

func (d *linuxDevice) describe() descriptorBuilder {
	dev := filepath.Join(pathSysClassBlock, d.name, "device")
	b := descriptorBuilder{
		BusType:         sysfsBusType(d.name),
		RemovableMedia:  readSysfs(filepath.Join(pathSysClassBlock, d.name, "removable")) == "1",
		VendorID:        readSysfs(filepath.Join(dev, "vendor")),
		ProductID:       readSysfs(filepath.Join(dev, "model")),
		ProductRevision: readSysfs(filepath.Join(dev, "rev")),
		SerialNumber:    readSysfs(filepath.Join(dev, "serial")),
	}
	if b.ProductRevision == "" {
		b.ProductRevision = readSysfs(filepath.Join(dev, "firmware_rev"))
	}
	return b
}

func (d *linuxDevice) driveCommand(in, out []byte) (int, error) {
	var cmd SendCmdInParams
	if err := decode(in, &cmd); err != nil {
		return 0, unix.EINVAL
	}
	if len(out) < sendCmdOutParamsSize {
		return 0, unix.EINVAL
	}

	buf := make([]byte, hdioDriveCmdHeader+SectorSize)
	buf[0] = cmd.DriveRegs.Command
	buf[1] = cmd.DriveRegs.SectorNumber
	buf[2] = cmd.DriveRegs.Features
	buf[3] = cmd.DriveRegs.SectorCount
	if err := hdioDriveCmd(d.fd, buf); err != nil {
		return 0, err
	}

	res := SendCmdOutParams{BufferSize: SectorSize}
	// libata copies status and error back only when the command produced sense data, so an
	// untouched command byte means the registers were not written.
	if buf[0] != cmd.DriveRegs.Command {
		res.DriverStatus.IDEStatus = buf[0]
		res.DriverStatus.DriverError = buf[1]
	}
	copy(res.Buffer[:], buf[hdioDriveCmdHeader:])
	return copy(out, encode(res)), nil
}

// sysfsBusType derives the bus from the device link, e.g.
// ../../devices/pci0000:00/0000:00:17.0/ata1/host0/target0:0:0/0:0:0:0/block/sda
func sysfsBusType(name string) BusType {
	link, err := os.Readlink(filepath.Join(pathSysClassBlock, name))
	if err != nil {
		return BusTypeUnknown
	}
	switch {
	case strings.Contains(link, "/usb"):
		return BusTypeUsb
	case strings.Contains(link, "/nvme"):
		return BusTypeNvme
	case strings.Contains(link, "/ata"):
		return BusTypeSata
	case strings.Contains(link, "/virtio"):
		return BusTypeVirtual
	default:
		return BusTypeScsi
	}
}

func readSysfs(path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(contents))
}
