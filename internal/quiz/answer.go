package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// AnswerKind tags which arm of the Answer union is populated.
type AnswerKind string

const (
	KindSingle AnswerKind = "single"
	KindMulti  AnswerKind = "multi"
	KindMap    AnswerKind = "map"
)

// Answer is the closed union of answer shapes shared by canonical answers
// and learner answers. Exactly one arm is meaningful, selected by Kind.
//
// JSON encoding uses the natural shape of each arm: a string for single, an
// array of strings for multi and an object of strings for map.
type Answer struct {
	Kind    AnswerKind
	Value   string
	Values  []string
	Entries map[string]string
}

// Single returns a single-choice answer.
func Single(v string) Answer {
	return Answer{Kind: KindSingle, Value: v}
}

// Multi returns a multi-select answer. The input slice is copied.
func Multi(values ...string) Answer {
	return Answer{Kind: KindMulti, Values: slices.Clone(values)}
}

// Map returns a keyed answer (yes/no tables, matchings). The input map is copied.
func Map(entries map[string]string) Answer {
	return Answer{Kind: KindMap, Entries: maps.Clone(entries)}
}

// IsZero reports whether no arm has been set at all.
func (a Answer) IsZero() bool {
	return a.Kind == ""
}

// IsEmpty reports whether the answer carries no non-empty field.
// A partially filled map or list is not empty.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case KindSingle:
		return strings.TrimSpace(a.Value) == ""
	case KindMulti:
		for _, v := range a.Values {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	case KindMap:
		for _, v := range a.Entries {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Clone returns a deep copy.
func (a Answer) Clone() Answer {
	return Answer{
		Kind:    a.Kind,
		Value:   a.Value,
		Values:  slices.Clone(a.Values),
		Entries: maps.Clone(a.Entries),
	}
}

// Equal reports deep equality, including order of multi values.
func (a Answer) Equal(b Answer) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindSingle:
		return a.Value == b.Value
	case KindMulti:
		return slices.Equal(a.Values, b.Values)
	case KindMap:
		return maps.Equal(a.Entries, b.Entries)
	}
	return true
}

func (a Answer) String() string {
	switch a.Kind {
	case KindSingle:
		return a.Value
	case KindMulti:
		return strings.Join(a.Values, ", ")
	case KindMap:
		keys := slices.Sorted(maps.Keys(a.Entries))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + a.Entries[k]
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindSingle:
		return json.Marshal(a.Value)
	case KindMulti:
		if a.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Values)
	case KindMap:
		if a.Entries == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(a.Entries)
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Single(s)
	case '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("multi answer: %w", err)
		}
		*a = Answer{Kind: KindMulti, Values: vs}
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("map answer: %w", err)
		}
		*a = Answer{Kind: KindMap, Entries: m}
	default:
		// Numbers and booleans show up in hand-written banks; keep their text.
		*a = Single(string(data))
	}
	return nil
}
