package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ErrInvalidBody is returned when a patch body is not a JSON object.
var ErrInvalidBody = errors.New("invalid request body")

// UnknownFieldError reports a key that the target patch does not accept.
type UnknownFieldError struct {
	Field   string
	Allowed []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("Unknown field: %s. Allowed fields: %s", e.Field, strings.Join(e.Allowed, ", "))
}

// Fields is the set of keys present in a decoded patch body.
type Fields map[string]struct{}

// Has reports whether key was present, including as an explicit null.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// DecodePatch decodes a JSON object into dst, a pointer to a struct whose
// json tags form the allow-list. Keys outside the allow-list are rejected.
func DecodePatch(body []byte, dst any) (Fields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, ErrInvalidBody
	}

	allowed := jsonFieldNames(dst)
	fields := make(Fields, len(raw))
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := allowed[key]; !ok {
			return nil, &UnknownFieldError{Field: key, Allowed: sortedKeys(allowed)}
		}
		fields[key] = struct{}{}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return fields, nil
}

func jsonFieldNames(dst any) map[string]struct{} {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		names[name] = struct{}{}
	}
	return names
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
