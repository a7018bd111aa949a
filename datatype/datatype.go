// Package datatype maps Go value types to their result-row, bind-parameter,
// literal and DDL representations.
package datatype

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/bawdo/typeq/dialect"
)

// ErrUnsupportedType is returned when no conversion is registered for a Go type.
var ErrUnsupportedType = errors.New("unsupported value type")

// Row is one result row whose values are addressed by column label.
type Row interface {
	// Value returns the raw driver value for label; ok is false if the
	// label is not part of the row.
	Value(label string) (v any, ok bool)
}

// Env carries the per-database settings a conversion may depend on.
type Env struct {
	Dialect  dialect.Dialect
	Location *time.Location
}

func (e Env) location() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

// Type is the untyped view of a conversion, used where the Go type is only
// known at run time.
type Type interface {
	Name() string
	GoType() reflect.Type
	Kind() dialect.Kind
	SQLType(env Env) string

	// ExtractAny reads label from row. ok is false when the value is NULL.
	ExtractAny(env Env, row Row, label string) (v any, ok bool, err error)
	BindAny(env Env, v any) (any, error)
	LiteralAny(env Env, v any) (string, error)
}

// DataType is the typed conversion for values of type T.
type DataType[T any] interface {
	Type
	Get(env Env, row Row, label string) (T, bool, error)
	Bind(env Env, v T) any
	Literal(env Env, v T) string
}

// Spec holds the conversion functions used by New.
type Spec[T any] struct {
	Name    string
	Kind    dialect.Kind
	FromRaw func(env Env, raw any) (T, error)
	ToBind  func(env Env, v T) any
	Literal func(env Env, v T) string
}

// New builds a DataType from spec. A nil ToBind binds the value unchanged.
func New[T any](spec Spec[T]) DataType[T] {
	return &basic[T]{spec: spec, goType: reflect.TypeFor[T]()}
}

type basic[T any] struct {
	spec   Spec[T]
	goType reflect.Type
}

func (b *basic[T]) Name() string           { return b.spec.Name }
func (b *basic[T]) GoType() reflect.Type   { return b.goType }
func (b *basic[T]) Kind() dialect.Kind     { return b.spec.Kind }
func (b *basic[T]) SQLType(env Env) string { return env.Dialect.SQLType(b.spec.Kind) }

func (b *basic[T]) Get(env Env, row Row, label string) (T, bool, error) {
	var zero T
	raw, ok := row.Value(label)
	if !ok {
		return zero, false, fmt.Errorf("no column labelled %s in result", label)
	}
	if raw == nil {
		return zero, false, nil
	}
	v, err := b.spec.FromRaw(env, raw)
	if err != nil {
		return zero, false, fmt.Errorf("column %s: %w", label, err)
	}
	return v, true, nil
}

func (b *basic[T]) Bind(env Env, v T) any {
	if b.spec.ToBind == nil {
		return v
	}
	return b.spec.ToBind(env, v)
}

func (b *basic[T]) Literal(env Env, v T) string { return b.spec.Literal(env, v) }

func (b *basic[T]) ExtractAny(env Env, row Row, label string) (any, bool, error) {
	v, ok, err := b.Get(env, row, label)
	if err != nil || !ok {
		return nil, ok, err
	}
	return v, true, nil
}

func (b *basic[T]) BindAny(env Env, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("%s cannot bind %T", b.spec.Name, v)
	}
	return b.Bind(env, t), nil
}

func (b *basic[T]) LiteralAny(env Env, v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	t, ok := v.(T)
	if !ok {
		return "", fmt.Errorf("%s cannot format %T", b.spec.Name, v)
	}
	return b.Literal(env, t), nil
}

// converted adapts an untyped Type to DataType[T] for Go types that share
// the underlying representation of a registered type (e.g. type Status string).
type converted[T any] struct {
	Type
}

func (c converted[T]) Get(env Env, row Row, label string) (T, bool, error) {
	var zero T
	v, ok, err := c.ExtractAny(env, row, label)
	if err != nil || !ok {
		return zero, ok, err
	}
	t, isT := v.(T)
	if !isT {
		return zero, false, fmt.Errorf("column %s: %s produced %T", label, c.Name(), v)
	}
	return t, true, nil
}

func (c converted[T]) Bind(env Env, v T) any {
	b, err := c.BindAny(env, v)
	if err != nil {
		panic(fmt.Sprintf("typeq: %v", err))
	}
	return b
}

func (c converted[T]) Literal(env Env, v T) string {
	s, err := c.LiteralAny(env, v)
	if err != nil {
		panic(fmt.Sprintf("typeq: %v", err))
	}
	return s
}

// derived converts values of a named Go type through a registered base type
// with the same underlying kind.
type derived struct {
	base   Type
	goType reflect.Type
}

func (d *derived) Name() string           { return d.goType.String() }
func (d *derived) GoType() reflect.Type   { return d.goType }
func (d *derived) Kind() dialect.Kind     { return d.base.Kind() }
func (d *derived) SQLType(env Env) string { return d.base.SQLType(env) }

func (d *derived) ExtractAny(env Env, row Row, label string) (any, bool, error) {
	v, ok, err := d.base.ExtractAny(env, row, label)
	if err != nil || !ok {
		return nil, ok, err
	}
	return reflect.ValueOf(v).Convert(d.goType).Interface(), true, nil
}

func (d *derived) toBase(v any) any {
	return reflect.ValueOf(v).Convert(d.base.GoType()).Interface()
}

func (d *derived) BindAny(env Env, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return d.base.BindAny(env, d.toBase(v))
}

func (d *derived) LiteralAny(env Env, v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	return d.base.LiteralAny(env, d.toBase(v))
}
