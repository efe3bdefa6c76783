// Package model holds the entities the admin panel reads from and writes to
// the content backend. The panel never owns these records; values here are
// transient copies of the last successful fetch.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Status is the normalized active/inactive state shared by every entity.
// The backend is inconsistent about its wire form (booleans for key
// features, "active"/"inactive" strings elsewhere); decoding accepts both.
type Status int

const (
	Inactive Status = iota
	Active
)

// ParseStatus converts any of the wire forms to a Status. Unknown values
// are Inactive.
func ParseStatus(v string) Status {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "active", "true", "1", "on", "yes":
		return Active
	default:
		return Inactive
	}
}

// StatusFromBool maps true to Active.
func StatusFromBool(b bool) Status {
	if b {
		return Active
	}
	return Inactive
}

func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Bool reports whether s is Active.
func (s Status) Bool() bool {
	return s == Active
}

// Flag renders s as "true"/"false", the form the key feature endpoints use.
func (s Status) Flag() string {
	return strconv.FormatBool(s.Bool())
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == Active {
		return Inactive
	}
	return Active
}

// MarshalJSON encodes s as "active" or "inactive".
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts booleans, 0/1 and the string forms.
func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = Inactive
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = ParseStatus(v)
	default:
		*s = ParseStatus(string(data))
	}
	return nil
}
