// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/ptr"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
	"github.com/ironcore-dev/smartprobe/internal/smart"
)

// DeviceReader reads the SMART data of a single device. *smart.Reader implements it.
type DeviceReader interface {
	Read(path string) (*smart.Result, error)
}

// ReadSMART sets the SMART field of every device, reading up to concurrency devices at a time.
// A device that cannot be read gets a SMARTInfo carrying only the error; only a cancelled
// context makes ReadSMART fail.
func ReadSMART(ctx context.Context, log logr.Logger, reader DeviceReader, devices []registry.BlockDevice, concurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i := range devices {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dev := &devices[i]
			res, err := reader.Read(dev.Path)
			if err != nil {
				log.Error(err, "Failed to read SMART data", "device", dev.Path)
				dev.SMART = &registry.SMARTInfo{Error: err.Error()}
				return nil
			}
			dev.SMART = NewSMARTInfo(res)
			log.V(1).Info("Read SMART data", "device", dev.Path, "attributes", len(res.Attributes))
			return nil
		})
	}
	return g.Wait()
}

// NewSMARTInfo converts a read result into its registry representation.
func NewSMARTInfo(res *smart.Result) *registry.SMARTInfo {
	info := &registry.SMARTInfo{
		Command:     res.Command.String(),
		DriveNumber: res.DriveNumber,
		BusType:     res.Descriptor.BusType.String(),
		Attributes:  make([]registry.SMARTAttribute, 0, len(res.Attributes)),
	}
	if res.HasProductID {
		info.ProductID = ptr.To(res.ProductID)
	}
	info.VendorID = optional(res.Descriptor.VendorID())
	info.ProductRevision = optional(res.Descriptor.ProductRevision())
	info.SerialNumber = optional(res.Descriptor.SerialNumber())

	for _, a := range res.Attributes {
		info.Attributes = append(info.Attributes, registry.SMARTAttribute{
			ID:         a.ID,
			Flags:      a.Flags,
			Value:      a.Value,
			Worst:      a.Worst,
			Raw:        a.RawValue(),
			Prefailure: a.Prefailure(),
			Online:     a.Online(),
		})
	}
	if res.Identity != nil {
		info.Identity = &registry.ATAIdentity{
			Model:        res.Identity.Model,
			SerialNumber: res.Identity.SerialNumber,
			Firmware:     res.Identity.Firmware,
		}
	}
	return info
}

func optional(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return ptr.To(s)
}
