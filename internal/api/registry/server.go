// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package registry

import "time"

// Server is the inventory a probe agent reports for its host.
type Server struct {
	SystemInfo *SystemInformation `json:"systemInfo,omitempty"`
	Storage    []BlockDevice      `json:"storage,omitempty"`
	// CollectedAt is the time the storage devices were last read.
	CollectedAt time.Time `json:"collectedAt"`
}
