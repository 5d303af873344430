// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
)

// SMARTCollector exposes the attribute tables of the last collection.
type SMARTCollector struct {
	devices   []registry.BlockDevice
	mux       sync.RWMutex
	valueDesc *prometheus.Desc
	worstDesc *prometheus.Desc
	rawDesc   *prometheus.Desc
	upDesc    *prometheus.Desc
}

// NewSMARTCollector initializes a new SMARTCollector and registers it with reg.
func NewSMARTCollector(reg prometheus.Registerer) *SMARTCollector {
	attributeLabels := []string{"device", "product", "id"}
	c := &SMARTCollector{
		valueDesc: prometheus.NewDesc(
			"smartprobe_attribute_value",
			"Normalized current value of a SMART attribute",
			attributeLabels,
			nil,
		),
		worstDesc: prometheus.NewDesc(
			"smartprobe_attribute_worst",
			"Worst normalized value of a SMART attribute",
			attributeLabels,
			nil,
		),
		rawDesc: prometheus.NewDesc(
			"smartprobe_attribute_raw",
			"Raw value of a SMART attribute",
			attributeLabels,
			nil,
		),
		upDesc: prometheus.NewDesc(
			"smartprobe_device_up",
			"Whether the SMART data of the device could be read",
			[]string{"device"},
			nil,
		),
	}
	reg.MustRegister(c)
	return c
}

// Update replaces the exposed devices. Devices without SMART data are not exposed.
func (c *SMARTCollector) Update(devices []registry.BlockDevice) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.devices = c.devices[:0]
	for _, d := range devices {
		if d.SMART != nil {
			c.devices = append(c.devices, d)
		}
	}
}

// Describe and Collect implement the prometheus.Collector interface to expose metrics.
func (c *SMARTCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.valueDesc
	ch <- c.worstDesc
	ch <- c.rawDesc
	ch <- c.upDesc
}

// Collect sends the attributes of every device read in the last collection.
func (c *SMARTCollector) Collect(ch chan<- prometheus.Metric) {
	c.mux.RLock()
	defer c.mux.RUnlock()

	for _, d := range c.devices {
		up := 1.0
		if d.SMART.Error != "" {
			up = 0
		}
		ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, up, d.Path)

		var product string
		if d.SMART.ProductID != nil {
			product = *d.SMART.ProductID
		}
		seen := make(map[uint8]bool, len(d.SMART.Attributes))
		for _, a := range d.SMART.Attributes {
			// Drives occasionally repeat an ID; the first entry wins.
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			id := strconv.Itoa(int(a.ID))
			ch <- prometheus.MustNewConstMetric(c.valueDesc, prometheus.GaugeValue, float64(a.Value), d.Path, product, id)
			ch <- prometheus.MustNewConstMetric(c.worstDesc, prometheus.GaugeValue, float64(a.Worst), d.Path, product, id)
			ch <- prometheus.MustNewConstMetric(c.rawDesc, prometheus.GaugeValue, float64(a.Raw), d.Path, product, id)
		}
	}
}
