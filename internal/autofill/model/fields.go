package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type FieldValue struct {
	Name string
	Raw  any // string, bool, json.Number or nil
}

// Fields is an ordered field -> raw value mapping. JSON objects keep their
// key order when decoded into it; a repeated key keeps its first position
// and takes the last value.
type Fields []FieldValue

func (f *Fields) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("fields: expected a JSON object")
	}

	out := Fields{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fields: unexpected key %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("fields: value of %q: %w", name, err)
		}
		if i, ok := seen[name]; ok {
			out[i].Raw = raw
			continue
		}
		seen[name] = len(out)
		out = append(out, FieldValue{Name: name, Raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(fv.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fv.Raw)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
