// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// attributeRecord lays out one 12-byte attribute table entry.
func attributeRecord(id byte, flags uint16, value, worst byte, raw [6]byte) []byte {
	rec := []byte{id, byte(flags), byte(flags >> 8), value, worst}
	rec = append(rec, raw[:]...)
	return append(rec, 0)
}

func attributePayload(records ...[]byte) []byte {
	payload := []byte{0x01, 0x00}
	for _, r := range records {
		payload = append(payload, r...)
	}
	return payload
}

var _ = Describe("Attributes", func() {
	It("decodes value and worst after the flag word", func() {
		payload := attributePayload(make([]byte, AttributeSize))
		payload[2] = 5
		payload[5] = 100
		payload[6] = 90

		attrs := DecodeAttributes(payload)
		Expect(attrs).To(HaveLen(1))
		Expect(attrs[0].ID).To(Equal(uint8(5)))
		Expect(attrs[0].Value).To(Equal(uint8(100)))
		Expect(attrs[0].Worst).To(Equal(uint8(90)))
	})

	It("decodes every field of a record", func() {
		payload := attributePayload(attributeRecord(194, 0x0022, 36, 52, [6]byte{0x24, 0x00, 0x12, 0x00, 0x34, 0x00}))
		payload[len(payload)-1] = 7

		Expect(DecodeAttributes(payload)).To(Equal([]Attribute{{
			ID:       194,
			Flags:    0x0022,
			Value:    36,
			Worst:    52,
			Raw:      [6]byte{0x24, 0x00, 0x12, 0x00, 0x34, 0x00},
			Reserved: 7,
		}}))
	})

	It("yields nothing when the first identifier is 0", func() {
		payload := make([]byte, SectorSize)
		for i := 3; i < len(payload); i++ {
			payload[i] = 0xFF
		}
		Expect(DecodeAttributes(payload)).To(BeEmpty())
	})

	It("yields N attributes in buffer order for 2+12N bytes", func() {
		var records [][]byte
		for id := byte(1); id <= 10; id++ {
			records = append(records, attributeRecord(id, 0, 100, 100, [6]byte{id}))
		}
		attrs := DecodeAttributes(attributePayload(records...))
		Expect(attrs).To(HaveLen(10))
		for i, a := range attrs {
			Expect(a.ID).To(Equal(byte(i + 1)))
			Expect(a.RawValue()).To(Equal(uint64(i + 1)))
		}
	})

	It("stops at the first unused slot", func() {
		payload := attributePayload(
			attributeRecord(1, 0x000f, 100, 100, [6]byte{}),
			attributeRecord(0, 0, 0, 0, [6]byte{}),
			attributeRecord(9, 0x0032, 99, 99, [6]byte{0x10}),
		)
		attrs := DecodeAttributes(payload)
		Expect(attrs).To(HaveLen(1))
		Expect(attrs[0].ID).To(Equal(uint8(1)))
	})

	It("ignores a trailing partial record", func() {
		payload := attributePayload(attributeRecord(3, 0, 1, 1, [6]byte{}))
		payload = append(payload, 4, 0, 0, 1, 1)
		Expect(DecodeAttributes(payload)).To(HaveLen(1))
	})

	It("handles payloads shorter than one record", func() {
		Expect(DecodeAttributes(nil)).To(BeEmpty())
		Expect(DecodeAttributes([]byte{1, 0, 5})).To(BeEmpty())
	})

	It("is deterministic across repeated decodes", func() {
		payload := attributePayload(
			attributeRecord(5, 0x0033, 100, 100, [6]byte{}),
			attributeRecord(9, 0x0032, 92, 92, [6]byte{0x3c, 0x1d}),
			attributeRecord(12, 0x0032, 100, 100, [6]byte{0x1f, 0x02}),
		)
		seq := Attributes(payload)
		first := DecodeAttributes(payload)
		for range 3 {
			var again []Attribute
			for a := range seq {
				again = append(again, a)
			}
			Expect(again).To(Equal(first))
		}
	})

	It("stops early when the consumer stops", func() {
		payload := attributePayload(
			attributeRecord(1, 0, 1, 1, [6]byte{}),
			attributeRecord(2, 0, 1, 1, [6]byte{}),
		)
		var seen []uint8
		for a := range Attributes(payload) {
			seen = append(seen, a.ID)
			break
		}
		Expect(seen).To(Equal([]uint8{1}))
	})

	Describe("Attribute helpers", func() {
		It("folds raw bytes little endian", func() {
			a := Attribute{Raw: [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}}
			Expect(a.RawValue()).To(Equal(uint64(0x060504030201)))
		})

		It("exposes the low flag bits", func() {
			Expect(Attribute{Flags: 0x0033}.Prefailure()).To(BeTrue())
			Expect(Attribute{Flags: 0x0033}.Online()).To(BeTrue())
			Expect(Attribute{Flags: 0x0030}.Prefailure()).To(BeFalse())
			Expect(Attribute{Flags: 0x0030}.Online()).To(BeFalse())
		})
	})

	Describe("attributeTable", func() {
		It("limits a full page to its 30 attribute slots", func() {
			page := make([]byte, SectorSize)
			for i := range MaxAttributes + 5 {
				copy(page[2+i*AttributeSize:], attributeRecord(byte(i+1), 0, 1, 1, [6]byte{}))
			}
			Expect(DecodeAttributes(attributeTable(page))).To(HaveLen(MaxAttributes))
		})

		It("leaves shorter buffers untouched", func() {
			payload := attributePayload(attributeRecord(1, 0, 1, 1, [6]byte{}))
			Expect(attributeTable(payload)).To(Equal(payload))
		})
	})
})
