package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// decodeStrict unmarshals raw into out, first checking that every non-pointer field of
// out's struct types is present and not null. encoding/json alone would zero-fill them.
func decodeStrict(raw json.RawMessage, out any, path string) error {
	t := reflect.TypeOf(out)
	if t == nil || t.Kind() != reflect.Pointer {
		return fmt.Errorf("decode target must be a pointer, got %T", out)
	}
	if err := checkRequired(raw, t.Elem(), path); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed %s: %w", path, err)
	}
	return nil
}

func checkRequired(raw json.RawMessage, t reflect.Type, path string) error {
	if isNull(raw) {
		return fmt.Errorf("malformed response: %s is null", path)
	}

	switch t.Kind() {
	case reflect.Struct:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("malformed %s: %w", path, err)
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := jsonName(f)
			if name == "" {
				continue
			}
			child := path + "." + name
			value, ok := fields[name]

			if f.Type.Kind() == reflect.Pointer {
				if ok && !isNull(value) {
					if err := checkRequired(value, f.Type.Elem(), child); err != nil {
						return err
					}
				}
				continue
			}

			if !ok {
				return fmt.Errorf("malformed response: missing field %s", child)
			}
			if err := checkRequired(value, f.Type, child); err != nil {
				return err
			}
		}

	case reflect.Slice:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("malformed %s: %w", path, err)
		}
		for i, item := range items {
			if err := checkRequired(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}

	return nil
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
