// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package smart

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sys/unix"
)

var _ = Describe("linuxDevice", func() {
	var root string

	writeSysfs := func(path, contents string) {
		GinkgoHelper()
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(contents+"\n"), 0o644)).To(Succeed())
	}

	// addBlock lays out a /sys/class/block entry linking into a fake /sys/devices tree.
	addBlock := func(name, devicePath string) string {
		GinkgoHelper()
		target := filepath.Join(root, "devices", devicePath, "block", name)
		Expect(os.MkdirAll(filepath.Join(target, "device"), 0o755)).To(Succeed())
		Expect(os.Symlink(target, filepath.Join(pathSysClassBlock, name))).To(Succeed())
		return target
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		original := pathSysClassBlock
		pathSysClassBlock = filepath.Join(root, "class", "block")
		Expect(os.MkdirAll(pathSysClassBlock, 0o755)).To(Succeed())
		DeferCleanup(func() {
			pathSysClassBlock = original
		})
	})

	It("answers the property query from sysfs", func() {
		target := addBlock("sda", "pci0000:00/0000:00:17.0/ata1/host0/target0:0:0/0:0:0:0")
		writeSysfs(filepath.Join(target, "removable"), "0")
		writeSysfs(filepath.Join(target, "device", "vendor"), "ATA     ")
		writeSysfs(filepath.Join(target, "device", "model"), "Samsung SSD 870")
		writeSysfs(filepath.Join(target, "device", "rev"), "2B6Q")

		d := &linuxDevice{fd: -1, name: "sda"}
		out := make([]byte, descriptorHeaderSize+descriptorSlack)
		n, err := d.Control(IOCTLStorageQueryProperty, encode(StoragePropertyQuery{}), out)
		Expect(err).NotTo(HaveOccurred())

		desc, err := ParseDeviceDescriptor(out[:n])
		Expect(err).NotTo(HaveOccurred())
		Expect(desc.BusType).To(Equal(BusTypeSata))
		Expect(desc.RemovableMedia).To(BeFalse())
		Expect(present(desc.VendorID())).To(Equal("ATA"))
		Expect(present(desc.ProductID())).To(Equal("Samsung SSD 870"))
		Expect(present(desc.ProductRevision())).To(Equal("2B6Q"))
		_, ok := desc.SerialNumber()
		Expect(ok).To(BeFalse())
	})

	It("falls back to firmware_rev for NVMe namespaces", func() {
		target := addBlock("nvme0n1", "pci0000:00/0000:00:1d.0/0000:3d:00.0/nvme/nvme0")
		writeSysfs(filepath.Join(target, "device", "model"), "Dell Ent NVMe")
		writeSysfs(filepath.Join(target, "device", "firmware_rev"), "1.1.0")
		writeSysfs(filepath.Join(target, "device", "serial"), "S4YNNE0N123456")

		desc, err := ParseDeviceDescriptor((&linuxDevice{name: "nvme0n1"}).describe().bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(desc.BusType).To(Equal(BusTypeNvme))
		Expect(present(desc.ProductRevision())).To(Equal("1.1.0"))
		Expect(present(desc.SerialNumber())).To(Equal("S4YNNE0N123456"))
	})

	DescribeTable("derives the bus type from the device link",
		func(devicePath string, want BusType) {
			addBlock("sdx", devicePath)
			Expect(sysfsBusType("sdx")).To(Equal(want))
		},
		Entry("usb", "pci0000:00/0000:00:14.0/usb2/2-1/2-1:1.0/host6/target6:0:0/6:0:0:0", BusTypeUsb),
		Entry("virtio", "pci0000:00/0000:00:04.0/virtio1", BusTypeVirtual),
		Entry("scsi", "pci0000:00/0000:00:1f.2/host0/target0:0:0/0:0:0:0", BusTypeScsi),
	)

	It("reports an unknown bus for missing devices", func() {
		Expect(sysfsBusType("sdz")).To(Equal(BusTypeUnknown))
	})

	It("rejects queries other than the standard device property", func() {
		d := &linuxDevice{fd: -1, name: "sda"}
		q := StoragePropertyQuery{PropertyID: 1, QueryType: PropertyStandardQuery}
		_, err := d.Control(IOCTLStorageQueryProperty, encode(q), make([]byte, 64))
		Expect(err).To(MatchError(unix.EOPNOTSUPP))
	})

	It("rejects unknown control codes", func() {
		d := &linuxDevice{fd: -1, name: "sda"}
		_, err := d.Control(0x12345, nil, nil)
		Expect(err).To(MatchError(unix.ENOTTY))
	})

	It("rejects truncated pass-through input", func() {
		d := &linuxDevice{fd: -1, name: "sda"}
		_, err := d.Control(SMARTRcvDriveData, make([]byte, 4), make([]byte, sendCmdOutParamsSize))
		Expect(err).To(MatchError(unix.EINVAL))
	})

	Context("pass-through", func() {
		var (
			sent  []byte
			reply func(buf []byte) error
		)

		BeforeEach(func() {
			sent = nil
			reply = func([]byte) error { return nil }
			original := hdioDriveCmd
			hdioDriveCmd = func(fd int, buf []byte) error {
				sent = append([]byte(nil), buf[:hdioDriveCmdHeader]...)
				return reply(buf)
			}
			DeferCleanup(func() {
				hdioDriveCmd = original
			})
		})

		driveCommand := func(command Command) (SendCmdOutParams, error) {
			GinkgoHelper()
			var res SendCmdOutParams
			out := make([]byte, sendCmdOutParamsSize)
			d := &linuxDevice{fd: -1, name: "sda"}
			n, err := d.Control(SMARTRcvDriveData, encode(NewSendCmdInParams(command, 0)), out)
			if err != nil {
				return res, err
			}
			Expect(decode(out[:n], &res)).To(Succeed())
			return res, nil
		}

		It("lays out command, sector number, features and sector count", func() {
			_, err := driveCommand(CommandSmartReadData)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal([]byte{ATACommandSMART, 1, SMARTFeatureReadData, 1}))

			_, err = driveCommand(CommandIdentify)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal([]byte{ATACommandIdentify, 1, 0, 1}))
		})

		It("succeeds when the registers are not written back", func() {
			reply = func(buf []byte) error {
				buf[hdioDriveCmdHeader+2] = 194
				return nil
			}
			res, err := driveCommand(CommandSmartReadData)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.BufferSize).To(Equal(uint32(SectorSize)))
			Expect(res.DriverStatus.DriverError).To(BeZero())
			Expect(res.DriverStatus.IDEStatus).To(BeZero())
			Expect(res.Buffer[2]).To(Equal(byte(194)))
		})

		It("reports written back status and error registers", func() {
			reply = func(buf []byte) error {
				buf[0] = 0x51
				buf[1] = 0x04
				return nil
			}
			res, err := driveCommand(CommandSmartReadData)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.DriverStatus.IDEStatus).To(Equal(byte(0x51)))
			Expect(res.DriverStatus.DriverError).To(Equal(byte(0x04)))
		})

		It("returns the ioctl errno", func() {
			reply = func([]byte) error { return unix.EIO }
			_, err := driveCommand(CommandSmartReadData)
			Expect(err).To(MatchError(unix.EIO))
		})

		Context("through the host opener", func() {
			var path string

			BeforeEach(func() {
				path = filepath.Join(root, "sda")
				Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())
			})

			It("reads a healthy disk whose registers stay untouched", func() {
				reply = func(buf []byte) error {
					copy(buf[hdioDriveCmdHeader+2:], []byte{5, 0x33, 0x00, 100, 90})
					return nil
				}
				res, err := NewReader(GinkgoLogr, NewHostOpener(), CommandSmartReadData).Read(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.DriveNumber).To(BeZero())
				Expect(res.Attributes).To(HaveLen(1))
				Expect(res.Attributes[0].ID).To(Equal(uint8(5)))
				Expect(res.Attributes[0].Value).To(Equal(uint8(100)))
			})

			It("maps a written back error register to ErrDriverError", func() {
				reply = func(buf []byte) error {
					buf[0] = 0x51
					buf[1] = 0x04
					return nil
				}
				_, err := NewReader(GinkgoLogr, NewHostOpener(), CommandSmartReadData).Read(path)
				Expect(err).To(MatchError(ErrRetrieveFailed))
				Expect(err).To(MatchError(ErrDriverError))
				var smartErr *Error
				Expect(errors.As(err, &smartErr)).To(BeTrue())
				Expect(smartErr.Code).To(Equal(uint32(4)))
			})

			It("maps an ioctl failure to ErrRetrieveFailed", func() {
				reply = func([]byte) error { return unix.EIO }
				_, err := NewReader(GinkgoLogr, NewHostOpener(), CommandSmartReadData).Read(path)
				Expect(err).To(MatchError(ErrRetrieveFailed))
				Expect(err).To(MatchError(unix.EIO))
			})
		})
	})

	It("maps an open failure to ErrOpenFailed", func() {
		r := NewReader(GinkgoLogr, NewHostOpener(), CommandSmartReadData)
		_, err := r.Read(filepath.Join(root, "missing"))
		Expect(err).To(MatchError(ErrOpenFailed))
		Expect(err).To(MatchError(unix.ENOENT))
	})
})
