package compat

import (
	"context"
	"fmt"
	"reflect"
)

// Member names probed on struct handles.
const (
	structGetter = "GetPassword"
	structSetter = "SetPassword"
	structField  = "Password"
)

// Member names probed on Object handles.
const (
	objectGetter = "getPassword"
	objectSetter = "setPassword"
	objectField  = "password"
)

type getFunc = func(context.Context) (string, error)
type setFunc = func(context.Context, string) error

type passwordGetter interface {
	GetPassword(ctx context.Context) (string, error)
}

type passwordSetter interface {
	SetPassword(ctx context.Context, secret string) error
}

// Object is a dynamically shaped host object keyed by member name, as
// handed over by a script bridge. Modern handles carry "getPassword" and
// "setPassword" funcs; legacy handles carry a "password" string.
type Object map[string]any

// Path names the route an operation takes through a handle.
type Path string

const (
	PathModern      Path = "modern"
	PathLegacy      Path = "legacy"
	PathUnsupported Path = "unsupported"
)

// Shape reports which path each operation takes for a handle.
type Shape struct {
	Handle string `json:"handle"`
	Get    Path   `json:"get"`
	Set    Path   `json:"set"`
}

// Modern reports whether both operations go through the host methods.
func (s Shape) Modern() bool {
	return s.Get == PathModern && s.Set == PathModern
}

// Probe inspects a handle without calling into it.
func Probe(handle any) Shape {
	_, get := getterFor(handle)
	_, set := setterFor(handle)
	return Shape{Handle: handleType(handle), Get: get, Set: set}
}

func handleType(handle any) string {
	if handle == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", handle)
}

func getterFor(handle any) (getFunc, Path) {
	if fn, ok := modernGetter(handle); ok {
		return fn, PathModern
	}
	if fn, ok := legacyGetter(handle); ok {
		return fn, PathLegacy
	}
	return nil, PathUnsupported
}

func setterFor(handle any) (setFunc, Path) {
	if fn, ok := modernSetter(handle); ok {
		return fn, PathModern
	}
	if fn, ok := legacySetter(handle); ok {
		return fn, PathLegacy
	}
	return nil, PathUnsupported
}

// modernGetter finds an invocable retrieval member. A member with the
// right name but the wrong type does not count.
func modernGetter(handle any) (getFunc, bool) {
	if obj, ok := asObject(handle); ok {
		return asFunc[getFunc](obj[objectGetter])
	}
	if g, ok := handle.(passwordGetter); ok && !isNilPointer(handle) {
		return g.GetPassword, true
	}
	v, ok := structValue(handle)
	if !ok {
		return nil, false
	}
	f, ok := fieldByName(v, structGetter)
	if !ok {
		return nil, false
	}
	return asFunc[getFunc](f.Interface())
}

func modernSetter(handle any) (setFunc, bool) {
	if obj, ok := asObject(handle); ok {
		return asFunc[setFunc](obj[objectSetter])
	}
	if s, ok := handle.(passwordSetter); ok && !isNilPointer(handle) {
		return s.SetPassword, true
	}
	v, ok := structValue(handle)
	if !ok {
		return nil, false
	}
	f, ok := fieldByName(v, structSetter)
	if !ok {
		return nil, false
	}
	return asFunc[setFunc](f.Interface())
}

func legacyGetter(handle any) (getFunc, bool) {
	if obj, ok := asObject(handle); ok {
		raw, present := obj[objectField]
		if !present {
			return nil, false
		}
		if raw != nil {
			if _, isString := raw.(string); !isString {
				return nil, false
			}
		}
		return func(context.Context) (string, error) {
			value, _ := obj[objectField].(string)
			return value, nil
		}, true
	}
	v, ok := structValue(handle)
	if !ok {
		return nil, false
	}
	f, ok := fieldByName(v, structField)
	if !ok || f.Kind() != reflect.String {
		return nil, false
	}
	return func(context.Context) (string, error) {
		return f.String(), nil
	}, true
}

func legacySetter(handle any) (setFunc, bool) {
	if obj, ok := asObject(handle); ok {
		raw, present := obj[objectField]
		if !present {
			return nil, false
		}
		if raw != nil {
			if _, isString := raw.(string); !isString {
				return nil, false
			}
		}
		return func(_ context.Context, secret string) error {
			obj[objectField] = secret
			return nil
		}, true
	}
	v, ok := structValue(handle)
	if !ok {
		return nil, false
	}
	f, ok := fieldByName(v, structField)
	if !ok || !f.CanSet() || f.Kind() != reflect.String {
		return nil, false
	}
	return func(_ context.Context, secret string) error {
		f.SetString(secret)
		return nil
	}, true
}

func asObject(handle any) (Object, bool) {
	switch h := handle.(type) {
	case Object:
		return h, h != nil
	case map[string]any:
		return Object(h), h != nil
	default:
		return nil, false
	}
}

// asFunc converts value to F when it is a non-nil func whose type is
// convertible to F. Named func types with the right signature qualify.
func asFunc[F any](value any) (F, bool) {
	var zero F
	if value == nil {
		return zero, false
	}
	if fn, ok := value.(F); ok {
		if reflect.ValueOf(fn).IsNil() {
			return zero, false
		}
		return fn, true
	}
	v := reflect.ValueOf(value)
	want := reflect.TypeOf((*F)(nil)).Elem()
	if v.Kind() != reflect.Func || v.IsNil() || !v.Type().ConvertibleTo(want) {
		return zero, false
	}
	fn, ok := v.Convert(want).Interface().(F)
	return fn, ok
}

// structValue dereferences handle down to a struct. The result is
// addressable only when handle was a pointer.
func structValue(handle any) (reflect.Value, bool) {
	v := reflect.ValueOf(handle)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}

// fieldByName returns the exported field name of v. A field reached
// through a nil embedded pointer counts as absent.
func fieldByName(v reflect.Value, name string) (reflect.Value, bool) {
	sf, ok := v.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, false
	}
	f, err := v.FieldByIndexErr(sf.Index)
	if err != nil || !f.CanInterface() {
		return reflect.Value{}, false
	}
	return f, true
}

func isNilPointer(handle any) bool {
	v := reflect.ValueOf(handle)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
