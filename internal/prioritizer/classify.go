// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package prioritizer

import "github.com/bonial-oss/cve-prioritizer/internal/types"

// Default thresholds.
const (
	DefaultCVSSThreshold = 6.0
	DefaultEPSSThreshold = 0.2
)

// Thresholds holds the inclusive cut-offs for both scoring axes.
type Thresholds struct {
	CVSS float64
	EPSS float64
}

// Classify maps exploitation status and scores to a priority.
//
//	known exploited              -> Priority 0
//	CVSS >= t.CVSS, EPSS >= t.EPSS -> Priority 1
//	CVSS >= t.CVSS, EPSS <  t.EPSS -> Priority 2
//	CVSS <  t.CVSS, EPSS >= t.EPSS -> Priority 3
//	CVSS <  t.CVSS, EPSS <  t.EPSS -> Priority 4
func Classify(t Thresholds, knownExploited bool, cvss, epss float64) types.Priority {
	if knownExploited {
		return types.Priority0
	}
	if cvss >= t.CVSS {
		if epss >= t.EPSS {
			return types.Priority1
		}
		return types.Priority2
	}
	if epss >= t.EPSS {
		return types.Priority3
	}
	return types.Priority4
}
