package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSet is a list-valued column persisted as JSON, used for the
// set-of-names fields on Staff and Patient (slot sets use IntSet).
type StringSet []string

// Value marshals the set to JSON for persistence.
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("marshal string set: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON payload into the set.
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = StringSet{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringSet", value)
	}
	if len(data) == 0 {
		*s = StringSet{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal string set: %w", err)
	}
	*s = out
	return nil
}

// Contains reports whether name is present in the set (case-sensitive,
// names are normalized to title case before storage).
func (s StringSet) Contains(name string) bool {
	for _, v := range s {
		if v == name {
			return true
		}
	}
	return false
}

// IntSet is a list-valued column of slot indices, persisted as JSON.
type IntSet []int

// Value marshals the set to JSON for persistence.
func (s IntSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]int(s))
	if err != nil {
		return nil, fmt.Errorf("marshal int set: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON payload into the set.
func (s *IntSet) Scan(value interface{}) error {
	if value == nil {
		*s = IntSet{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for IntSet", value)
	}
	if len(data) == 0 {
		*s = IntSet{}
		return nil
	}
	var out []int
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal int set: %w", err)
	}
	*s = out
	return nil
}

// Contains reports whether slot is present in the set.
func (s IntSet) Contains(slot int) bool {
	for _, v := range s {
		if v == slot {
			return true
		}
	}
	return false
}
