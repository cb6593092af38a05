// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "encoding/json"

// marshalWithLabels encodes v and appends the "priority" and "kev" keys.
func marshalWithLabels(v any, priority, kev string) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(base, &all); err != nil {
		return nil, err
	}
	p, _ := json.Marshal(priority)
	k, _ := json.Marshal(kev)
	all["priority"] = p
	all["kev"] = k
	return json.Marshal(all)
}
