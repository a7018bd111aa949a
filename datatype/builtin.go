package datatype

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bawdo/typeq/dialect"
)

var (
	Int64 = New(Spec[int64]{
		Name:    "int64",
		Kind:    dialect.KindBigInt,
		FromRaw: func(_ Env, raw any) (int64, error) { return toInt64(raw) },
		Literal: func(_ Env, v int64) string { return strconv.FormatInt(v, 10) },
	})
	Int = New(Spec[int]{
		Name:    "int",
		Kind:    dialect.KindInt,
		FromRaw: func(_ Env, raw any) (int, error) { return narrow[int](raw) },
		Literal: func(_ Env, v int) string { return strconv.Itoa(v) },
	})
	Int32 = New(Spec[int32]{
		Name:    "int32",
		Kind:    dialect.KindInt,
		FromRaw: func(_ Env, raw any) (int32, error) { return narrow[int32](raw) },
		Literal: func(_ Env, v int32) string { return strconv.FormatInt(int64(v), 10) },
	})
	Int16 = New(Spec[int16]{
		Name:    "int16",
		Kind:    dialect.KindSmallInt,
		FromRaw: func(_ Env, raw any) (int16, error) { return narrow[int16](raw) },
		Literal: func(_ Env, v int16) string { return strconv.FormatInt(int64(v), 10) },
	})
	Float64 = New(Spec[float64]{
		Name:    "float64",
		Kind:    dialect.KindDouble,
		FromRaw: func(_ Env, raw any) (float64, error) { return toFloat64(raw) },
		Literal: func(_ Env, v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	})
	Float32 = New(Spec[float32]{
		Name:    "float32",
		Kind:    dialect.KindReal,
		FromRaw: func(_ Env, raw any) (float32, error) {
			f, err := toFloat64(raw)
			return float32(f), err
		},
		Literal: func(_ Env, v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) },
	})
	Bool = New(Spec[bool]{
		Name:    "bool",
		Kind:    dialect.KindBool,
		FromRaw: func(_ Env, raw any) (bool, error) { return toBool(raw) },
		Literal: func(env Env, v bool) string { return env.Dialect.BoolLiteral(v) },
	})
	String = New(Spec[string]{
		Name:    "string",
		Kind:    dialect.KindVarchar,
		FromRaw: func(_ Env, raw any) (string, error) { return toString(raw), nil },
		Literal: func(env Env, v string) string { return env.Dialect.StringLiteral(v) },
	})
	Bytes = New(Spec[[]byte]{
		Name:    "bytes",
		Kind:    dialect.KindBinary,
		FromRaw: func(_ Env, raw any) ([]byte, error) { return toBytes(raw) },
		Literal: func(env Env, v []byte) string { return env.Dialect.BinaryLiteral(v) },
	})
	Time = New(Spec[time.Time]{
		Name:    "time",
		Kind:    dialect.KindTimestamp,
		FromRaw: func(env Env, raw any) (time.Time, error) { return toTime(raw, env.location()) },
		ToBind:  func(env Env, v time.Time) any { return v.In(env.location()) },
		Literal: func(env Env, v time.Time) string { return env.Dialect.TimestampLiteral(v.In(env.location())) },
	})
	UUID = New(Spec[uuid.UUID]{
		Name:    "uuid",
		Kind:    dialect.KindUUID,
		FromRaw: func(_ Env, raw any) (uuid.UUID, error) { return toUUID(raw) },
		ToBind:  func(_ Env, v uuid.UUID) any { return v.String() },
		Literal: func(env Env, v uuid.UUID) string { return env.Dialect.UUIDLiteral(v.String()) },
	})
	Decimal = New(Spec[decimal.Decimal]{
		Name:    "decimal",
		Kind:    dialect.KindDecimal,
		FromRaw: func(_ Env, raw any) (decimal.Decimal, error) { return toDecimal(raw) },
		ToBind:  func(_ Env, v decimal.Decimal) any { return v.String() },
		Literal: func(_ Env, v decimal.Decimal) string { return v.String() },
	})
)

func narrow[T ~int | ~int16 | ~int32](raw any) (T, error) {
	n, err := toInt64(raw)
	return T(n), err
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to an integer", raw)
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	}
	n, err := toInt64(raw)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to a float", raw)
	}
	return float64(n), nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case []byte:
		return strconv.ParseBool(string(v))
	case string:
		return strconv.ParseBool(v)
	}
	n, err := toInt64(raw)
	if err != nil {
		return false, fmt.Errorf("cannot convert %T to a bool", raw)
	}
	return n != 0, nil
}

func toString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(raw)
}

func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("cannot convert %T to bytes", raw)
}

// timeLayouts are tried in order when a driver returns a timestamp as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func toTime(raw any, loc *time.Location) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.In(loc), nil
	case []byte:
		return parseTime(string(v), loc)
	case string:
		return parseTime(v, loc)
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to a time", raw)
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

func toUUID(raw any) (uuid.UUID, error) {
	switch v := raw.(type) {
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case string:
		return uuid.Parse(v)
	}
	return uuid.Nil, fmt.Errorf("cannot convert %T to a uuid", raw)
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case []byte:
		return decimal.NewFromString(string(v))
	case string:
		return decimal.NewFromString(v)
	}
	n, err := toInt64(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot convert %T to a decimal", raw)
	}
	return decimal.NewFromInt(n), nil
}
