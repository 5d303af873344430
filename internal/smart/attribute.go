// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	"encoding/binary"
	"iter"
	"slices"
)

const (
	// AttributeSize is the size of one entry of the SMART attribute table.
	AttributeSize = 12
	// attributeTableOffset skips the data structure revision word.
	attributeTableOffset = 2
	// MaxAttributes is the number of attribute slots in a SMART READ DATA page.
	MaxAttributes = 30
	// attributeTableEnd is the end of the attribute slots within a SMART READ DATA page.
	attributeTableEnd = attributeTableOffset + MaxAttributes*AttributeSize
)

// Attribute is one raw SMART attribute. Meaning of the values is vendor specific.
type Attribute struct {
	ID       uint8   `json:"id"`
	Flags    uint16  `json:"flags"`
	Value    uint8   `json:"value"`
	Worst    uint8   `json:"worst"`
	Raw      [6]byte `json:"raw"`
	Reserved uint8   `json:"reserved"`
}

type wireAttribute struct {
	ID       uint8
	Flags    uint16
	Value    uint8
	Worst    uint8
	Raw      [6]byte
	Reserved uint8
}

// RawValue folds the six raw bytes into an integer, least significant byte first.
func (a Attribute) RawValue() uint64 {
	var r uint64
	for i := len(a.Raw) - 1; i >= 0; i-- {
		r = r<<8 | uint64(a.Raw[i])
	}
	return r
}

// Prefailure reports bit 0 of the flag word.
func (a Attribute) Prefailure() bool {
	return a.Flags&0x1 != 0
}

// Online reports bit 1 of the flag word.
func (a Attribute) Online() bool {
	return a.Flags&0x2 != 0
}

// Attributes walks the attribute table of payload. Records start at offset 2 and are 12
// bytes long; the walk stops before a record that does not fit or whose ID is 0.
func Attributes(payload []byte) iter.Seq[Attribute] {
	return func(yield func(Attribute) bool) {
		for off := attributeTableOffset; len(payload)-off >= AttributeSize; off += AttributeSize {
			rec := payload[off : off+AttributeSize]
			if rec[0] == 0 {
				return
			}
			a := Attribute{
				ID:       rec[0],
				Flags:    binary.LittleEndian.Uint16(rec[1:3]),
				Value:    rec[3],
				Worst:    rec[4],
				Reserved: rec[11],
			}
			copy(a.Raw[:], rec[5:11])
			if !yield(a) {
				return
			}
		}
	}
}

// DecodeAttributes collects Attributes(payload).
func DecodeAttributes(payload []byte) []Attribute {
	return slices.Collect(Attributes(payload))
}

// attributeTable returns the attribute slots of a full SMART READ DATA page.
func attributeTable(page []byte) []byte {
	if len(page) > attributeTableEnd {
		return page[:attributeTableEnd]
	}
	return page
}
