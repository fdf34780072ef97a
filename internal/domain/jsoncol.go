package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// scanJSONColumn decodes a JSON text column into dest. NULL columns leave dest
// at its zero value.
func scanJSONColumn(src interface{}, dest interface{}, what string) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan %s: unsupported source type %T", what, src)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("scan %s: %w", what, err)
	}
	return nil
}

// StringSet is a small membership set stored as a JSON array. Order is
// preserved but not meaningful.
type StringSet []string

func (s StringSet) Contains(v string) bool {
	for _, member := range s {
		if member == v {
			return true
		}
	}
	return false
}

// Add returns the set with v included. Adding an existing member returns the
// set unchanged.
func (s StringSet) Add(v string) StringSet {
	if s.Contains(v) {
		return s
	}
	return append(s, v)
}

// Remove returns the set without v.
func (s StringSet) Remove(v string) StringSet {
	out := s[:0:0]
	for _, member := range s {
		if member != v {
			out = append(out, member)
		}
	}
	return out
}

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		s = StringSet{}
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal string set: %w", err)
	}
	return string(bytes), nil
}

func (s *StringSet) Scan(src interface{}) error {
	return scanJSONColumn(src, s, "string set")
}

// NameMap maps participant IDs to display names, stored as JSON.
type NameMap map[string]string

func (m NameMap) Value() (driver.Value, error) {
	if m == nil {
		m = NameMap{}
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal name map: %w", err)
	}
	return string(bytes), nil
}

func (m *NameMap) Scan(src interface{}) error {
	return scanJSONColumn(src, m, "name map")
}
