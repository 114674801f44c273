package model

import (
	"sort"
	"strings"
)

// FieldMapping maps a logical field name to the labels it may appear under in
// markup. It is read-only after construction.
type FieldMapping struct {
	labels map[string][]string
}

// NewFieldMapping copies m. Labels are folded; empty labels and fields left
// without labels are dropped.
func NewFieldMapping(m map[string][]string) FieldMapping {
	out := make(map[string][]string, len(m))
	for field, labels := range m {
		seen := make(map[string]struct{}, len(labels))
		kept := make([]string, 0, len(labels))
		for _, l := range labels {
			l = Fold(strings.TrimSpace(l))
			if l == "" {
				continue
			}
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			kept = append(kept, l)
		}
		if len(kept) > 0 {
			out[field] = kept
		}
	}
	return FieldMapping{labels: out}
}

// Labels returns a copy of the labels configured for field.
func (m FieldMapping) Labels(field string) ([]string, bool) {
	l, ok := m.labels[field]
	if !ok {
		return nil, false
	}
	return append([]string(nil), l...), true
}

func (m FieldMapping) Fields() []string {
	out := make([]string, 0, len(m.labels))
	for f := range m.labels {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (m FieldMapping) Len() int { return len(m.labels) }

// Table returns a copy of the whole mapping.
func (m FieldMapping) Table() map[string][]string {
	out := make(map[string][]string, len(m.labels))
	for f, l := range m.labels {
		out[f] = append([]string(nil), l...)
	}
	return out
}
