package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Order is a sort position. Multipart writes make the backend store it as a
// string on some records, so both number and numeric-string forms decode.
type Order int

func (o *Order) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = 0
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			*o = 0
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*o = Order(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*o = Order(int(f))
	return nil
}

// String formats o for form fields.
func (o Order) String() string {
	return strconv.Itoa(int(o))
}

// Bool is a boolean that also decodes from "true"/"false" strings.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = Bool(ParseStatus(v).Bool())
		return nil
	}
	*b = Bool(bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("1")))
	return nil
}

// Tags is a list of blog tags. Writes send tags as a JSON-encoded string,
// so reads accept either an array or a string holding one.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			*t = nil
			return nil
		}
		if !strings.HasPrefix(inner, "[") {
			*t = splitTags(inner)
			return nil
		}
		data = []byte(inner)
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = Tags(list)
	return nil
}

// Encode returns the JSON array form sent inside multipart payloads.
func (t Tags) Encode() string {
	if t == nil {
		return "[]"
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return "[]"
	}
	return string(b)
}

func splitTags(s string) Tags {
	var out Tags
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
