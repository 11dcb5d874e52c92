// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package go2star converts Go values to [starlark.Value].
package go2star

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	starlarktime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
)

// To converts a Go value to a Starlark value.
//
// Booleans, strings, integers and floats map to their Starlark counterparts;
// a float that holds a whole number becomes a Starlark int. [time.Time] and
// [time.Duration] map to the types of the starlark.net time module. Slices
// become lists and maps become dicts, with elements converted recursively.
// A struct becomes a dict keyed by field name; the starlark or json field
// tags override the key, json "-" fields and unexported fields are skipped.
// Nil values of any kind convert to [starlark.None].
//
// If the Go value can't be converted, an error is returned.
func To(val any) (starlark.Value, error) {
	if val == nil {
		return starlark.None, nil
	}

	switch v := val.(type) {
	case time.Time:
		return starlarktime.Time(v), nil
	case time.Duration:
		return starlarktime.Duration(v), nil
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return starlark.None, nil
		}
		return To(rv.Elem().Interface())
	case reflect.Bool:
		return starlark.Bool(rv.Bool()), nil
	case reflect.String:
		return starlark.String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return starlark.MakeUint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		fl := rv.Float()
		if isWhole(fl) {
			return starlark.MakeInt64(int64(fl)), nil
		}
		return starlark.Float(fl), nil
	case reflect.Slice, reflect.Array:
		return fromSlice(rv)
	case reflect.Map:
		return fromMap(rv)
	case reflect.Struct:
		return fromStruct(rv)
	default:
		return nil, fmt.Errorf("unsupported Go type: %T", val)
	}
}

func fromSlice(rv reflect.Value) (starlark.Value, error) {
	var elems []starlark.Value
	for i := range rv.Len() {
		elem, err := To(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	return starlark.NewList(elems), nil
}

func fromMap(rv reflect.Value) (starlark.Value, error) {
	dict := starlark.NewDict(rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := To(iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("converting map key: %w", err)
		}
		val, err := To(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("converting map value: %w", err)
		}
		if err := dict.SetKey(key, val); err != nil {
			return nil, fmt.Errorf("setting dict key %v: %w", key, err)
		}
	}
	return dict, nil
}

func fromStruct(rv reflect.Value) (starlark.Value, error) {
	dict := starlark.NewDict(rv.NumField())
	typ := rv.Type()

	for i := range rv.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("starlark"); ok {
			name = tag
		} else if tag, ok := field.Tag.Lookup("json"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		val, err := To(rv.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("converting field %s: %w", name, err)
		}
		if err := dict.SetKey(starlark.String(name), val); err != nil {
			return nil, fmt.Errorf("setting field %s: %w", name, err)
		}
	}

	return dict, nil
}

// isWhole reports whether the float can be converted to int without losing
// precision.
func isWhole(f float64) bool {
	if f < math.MinInt64 || f > math.MaxInt64 {
		return false
	}
	return f == math.Trunc(f)
}
