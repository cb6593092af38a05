// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cvss

import (
	"fmt"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// scorer is implemented by every parsed go-cvss vector.
type scorer interface {
	BaseScore() float64
}

// parse validates vector and returns it parsed along with its version.
// Vectors without a "CVSS:" prefix are treated as CVSS 2.0.
func parse(vector string) (scorer, types.CVSSVersion, error) {
	switch {
	case strings.HasPrefix(vector, "CVSS:3.1"):
		v, err := gocvss31.ParseVector(vector)
		if err != nil {
			return nil, "", fmt.Errorf("invalid CVSS 3.1 vector: %w", err)
		}
		return v, types.CVSSv31, nil
	case strings.HasPrefix(vector, "CVSS:3.0"):
		v, err := gocvss30.ParseVector(vector)
		if err != nil {
			return nil, "", fmt.Errorf("invalid CVSS 3.0 vector: %w", err)
		}
		return v, types.CVSSv30, nil
	case strings.HasPrefix(vector, "CVSS:"):
		return nil, "", fmt.Errorf("unsupported CVSS vector: %s", vector)
	default:
		v, err := gocvss20.ParseVector(vector)
		if err != nil {
			return nil, "", fmt.Errorf("unknown or invalid vector format: %w", err)
		}
		return v, types.CVSSv2, nil
	}
}

// Version determines the CVSS version of a vector string and validates it.
func Version(vector string) (types.CVSSVersion, error) {
	_, version, err := parse(vector)
	return version, err
}

// BaseScore computes the base score of a vector.
func BaseScore(vector string) (float64, error) {
	v, _, err := parse(vector)
	if err != nil {
		return 0, err
	}
	return v.BaseScore(), nil
}

// Severity maps a base score to its qualitative rating. CVSS 2.0 has no
// CRITICAL band, so 9.0+ stays HIGH there.
func Severity(version types.CVSSVersion, score float64) string {
	switch {
	case version != types.CVSSv2 && score == 0:
		return "NONE"
	case score < 4.0:
		return "LOW"
	case score < 7.0:
		return "MEDIUM"
	case score < 9.0 || version == types.CVSSv2:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}
