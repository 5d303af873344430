// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"k8s.io/utils/ptr"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
	"github.com/ironcore-dev/smartprobe/internal/probe"
)

var _ = Describe("SMARTCollector", func() {
	var (
		reg       *prometheus.Registry
		collector *probe.SMARTCollector
	)

	BeforeEach(func() {
		reg = prometheus.NewPedanticRegistry()
		collector = probe.NewSMARTCollector(reg)
	})

	devices := []registry.BlockDevice{
		{
			Path: "/dev/sda",
			SMART: &registry.SMARTInfo{
				ProductID: ptr.To("ST4000DM004-2CV104"),
				Attributes: []registry.SMARTAttribute{
					{ID: 5, Value: 100, Worst: 90},
					{ID: 9, Value: 91, Worst: 91, Raw: 8284},
					{ID: 9, Value: 1, Worst: 1, Raw: 1},
				},
			},
		},
		{Path: "/dev/sdb", SMART: &registry.SMARTInfo{Error: "query failed"}},
		{Path: "/dev/sdc"},
	}

	It("exposes nothing before the first update", func() {
		Expect(testutil.CollectAndCount(collector)).To(BeZero())
	})

	It("exposes the attribute table of every read device", func() {
		collector.Update(devices)

		Expect(testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP smartprobe_attribute_value Normalized current value of a SMART attribute
# TYPE smartprobe_attribute_value gauge
smartprobe_attribute_value{device="/dev/sda",id="5",product="ST4000DM004-2CV104"} 100
smartprobe_attribute_value{device="/dev/sda",id="9",product="ST4000DM004-2CV104"} 91
# HELP smartprobe_attribute_raw Raw value of a SMART attribute
# TYPE smartprobe_attribute_raw gauge
smartprobe_attribute_raw{device="/dev/sda",id="5",product="ST4000DM004-2CV104"} 0
smartprobe_attribute_raw{device="/dev/sda",id="9",product="ST4000DM004-2CV104"} 8284
# HELP smartprobe_device_up Whether the SMART data of the device could be read
# TYPE smartprobe_device_up gauge
smartprobe_device_up{device="/dev/sda"} 1
smartprobe_device_up{device="/dev/sdb"} 0
`), "smartprobe_attribute_value", "smartprobe_attribute_raw", "smartprobe_device_up")).To(Succeed())
	})

	It("exposes the worst value", func() {
		collector.Update(devices)

		families, err := reg.Gather()
		Expect(err).NotTo(HaveOccurred())

		var worst *dto.MetricFamily
		for _, f := range families {
			if f.GetName() == "smartprobe_attribute_worst" {
				worst = f
			}
		}
		Expect(worst).NotTo(BeNil())
		Expect(worst.GetMetric()).To(HaveLen(2))
		Expect(worst.GetMetric()[0].GetGauge().GetValue()).To(Equal(90.0))
	})

	It("replaces the previous collection", func() {
		collector.Update(devices)
		collector.Update(devices[1:2])
		Expect(testutil.CollectAndCount(collector)).To(Equal(1))
	})
})
