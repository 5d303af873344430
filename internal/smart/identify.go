// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	"strings"
)

// Identity holds the strings of an ATA IDENTIFY DEVICE page.
type Identity struct {
	SerialNumber string `json:"serialNumber,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Word offsets of the IDENTIFY DEVICE strings.
const (
	identifySerialWord    = 10
	identifySerialWords   = 10
	identifyFirmwareWord  = 23
	identifyFirmwareWords = 4
	identifyModelWord     = 27
	identifyModelWords    = 20
)

// ParseIdentity decodes the ATA strings of an IDENTIFY DEVICE page. It returns false when page
// is shorter than a sector.
func ParseIdentity(page []byte) (Identity, bool) {
	if len(page) < SectorSize {
		return Identity{}, false
	}
	return Identity{
		SerialNumber: ataString(page, identifySerialWord, identifySerialWords),
		Firmware:     ataString(page, identifyFirmwareWord, identifyFirmwareWords),
		Model:        ataString(page, identifyModelWord, identifyModelWords),
	}, true
}

// ataString reads words 16-bit words starting at word. ATA strings store the first character
// of each pair in the high byte.
func ataString(page []byte, word, words int) string {
	b := make([]byte, 0, words*2)
	for i := word * 2; i < (word+words)*2; i += 2 {
		b = append(b, page[i+1], page[i])
	}
	return strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
}
