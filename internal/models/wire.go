// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringSet is a duplicate-free list of strings. On the wire the API sends
// either a single string or an array, so both are accepted when decoding.
type StringSet []string

// UnmarshalJSON accepts a JSON string, an array of strings, or null.
// A string holding a JSON array is decoded as that array.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		// Multipart submissions carry sets as JSON-encoded strings and
		// some records come back that way.
		var many []string
		if strings.HasPrefix(strings.TrimSpace(one), "[") && json.Unmarshal([]byte(one), &many) == nil {
			*s = NormalizeSet(many)
			return nil
		}
		*s = NormalizeSet([]string{one})
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = NormalizeSet(many)
	return nil
}

// Contains reports whether v is a member of the set.
func (s StringSet) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// NormalizeSet trims every value, drops empties and removes duplicates
// while keeping the first occurrence order.
func NormalizeSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// FlexString decodes from either a JSON string or a JSON number.
type FlexString string

// UnmarshalJSON accepts a JSON string, number, or null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
