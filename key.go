package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

/*
GenerateKey builds a deterministic cache key from a prefix and a parameter value.

Primitive params (strings, booleans, numbers, nil) are coerced to their string
form. Anything else is serialized as JSON with object keys sorted at every
level, so two logically-equal parameter sets produce the same key no matter
in which order their fields were assembled. The result is prefix + ":" + form.
*/
func GenerateKey(prefix string, params any) string {
	return prefix + ":" + keyPart(params)
}

func keyPart(params any) string {
	if params == nil {
		return "null"
	}

	switch reflect.ValueOf(params).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(params)
	}

	s, err := canonicalJSON(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return s
}

// canonicalJSON round-trips v through a generic value so struct fields are
// re-emitted as map keys, which encoding/json always writes sorted.
func canonicalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
