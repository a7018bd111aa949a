package datatype

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry maps Go types to their conversions. Lookups are safe for
// concurrent use; conversions for named types are derived at most once.
type Registry struct {
	types sync.Map // reflect.Type -> Type
	group singleflight.Group
}

// NewRegistry returns a registry holding the built-in conversions.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, t := range []Type{Int64, Int, Int32, Int16, Float64, Float32, Bool, String, Bytes, Time, UUID, Decimal} {
		r.types.Store(t.GoType(), t)
	}
	return r
}

// Register installs dt for T, replacing any earlier conversion.
func Register[T any](r *Registry, dt DataType[T]) {
	r.types.Store(reflect.TypeFor[T](), dt)
}

// Of returns the conversion for T.
func Of[T any](r *Registry) (DataType[T], error) {
	t, err := r.ByType(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	if dt, ok := t.(DataType[T]); ok {
		return dt, nil
	}
	return converted[T]{Type: t}, nil
}

// MustOf is Of for conversions the caller knows are registered.
func MustOf[T any](r *Registry) DataType[T] {
	dt, err := Of[T](r)
	if err != nil {
		panic(fmt.Sprintf("typeq: %v", err))
	}
	return dt
}

// OfValue returns the conversion for the dynamic type of v.
func (r *Registry) OfValue(v any) (Type, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	return r.ByType(reflect.TypeOf(v))
}

// ByType returns the conversion for t. A named type whose underlying kind
// matches a built-in conversion is derived from it and cached.
func (r *Registry) ByType(t reflect.Type) (Type, error) {
	if found, ok := r.types.Load(t); ok {
		return found.(Type), nil
	}
	v, err, _ := r.group.Do(t.String(), func() (any, error) {
		if found, ok := r.types.Load(t); ok {
			return found, nil
		}
		base, ok := r.baseFor(t)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		d := &derived{base: base, goType: t}
		actual, _ := r.types.LoadOrStore(t, Type(d))
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Type), nil
}

// baseKinds maps reflect kinds to the built-in conversion sharing their representation.
var baseKinds = map[reflect.Kind]reflect.Type{
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Float64: reflect.TypeFor[float64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Bool:    reflect.TypeFor[bool](),
	reflect.String:  reflect.TypeFor[string](),
}

func (r *Registry) baseFor(t reflect.Type) (Type, bool) {
	bt, ok := baseKinds[t.Kind()]
	if !ok || bt == t {
		return nil, false
	}
	found, ok := r.types.Load(bt)
	if !ok {
		return nil, false
	}
	return found.(Type), true
}
