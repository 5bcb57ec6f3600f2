package memo

import (
	"bytes"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/unkn0wn-root/orchid/internal/util"
)

// Key identifies one argument signature inside a namespace.
type Key string

// Args is a call's argument list: positional values in order plus named
// values. Named values are keyed by name; their map order never matters.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Hashable reports whether v can take part in a key: its dynamic value must be
// comparable with == and equal to itself. Slices, maps, funcs and
// structs/arrays holding them are not; neither is anything holding a NaN.
// nil is hashable.
func Hashable(v any) bool {
	var buf bytes.Buffer
	return writeValue(&buf, v)
}

// KeyOf derives the key for args in namespace ns. ok=false when any
// positional or named value is unhashable; such calls must not be cached.
//
// Values are encoded from their reflected kind and bits, never through
// String/GoString/Format methods: two arguments share a key only when they
// have the same dynamic type and are ==. int(1) and int64(1) differ,
// pointers and channels are keyed by address, -0.0 and +0.0 agree, and
// unexported struct fields take part. Named values are sorted by name and
// each (name, value) pair contributes once.
func KeyOf(ns string, args Args) (Key, bool) {
	var buf bytes.Buffer
	for _, v := range args.Positional {
		if !writeValue(&buf, v) {
			return "", false
		}
	}
	buf.WriteByte(0x1e) // positional / named separator

	names := make([]string, 0, len(args.Keyword))
	for name := range args.Keyword {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeString(&buf, name)
		if !writeValue(&buf, args.Keyword[name]) {
			return "", false
		}
	}
	return Key(util.DigestKey(ns, buf.Bytes())), true
}

func keyOf1(ns string, a any) (Key, bool) {
	return KeyOf(ns, Args{Positional: []any{a}})
}

func writeValue(buf *bytes.Buffer, v any) bool {
	if v == nil {
		buf.WriteString("nil;")
		return true
	}
	rv := reflect.ValueOf(v)
	writeType(buf, rv.Type())
	return encode(buf, rv)
}

// writeType names t with its package path so same-named types from
// different packages stay apart.
func writeType(buf *bytes.Buffer, t reflect.Type) {
	if p := t.PkgPath(); p != "" {
		buf.WriteString(p)
		buf.WriteByte(' ')
	}
	writeString(buf, t.String())
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteByte(':')
	buf.WriteString(s)
}

func writeFloat(buf *bytes.Buffer, f float64) bool {
	if math.IsNaN(f) {
		return false
	}
	if f == 0 {
		f = 0 // fold -0 into +0
	}
	buf.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
	buf.WriteByte(';')
	return true
}

// encode walks rv by kind. It returns false for anything == cannot compare
// reliably, so such calls bypass the cache.
func encode(buf *bytes.Buffer, rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			buf.WriteString("t;")
		} else {
			buf.WriteString("f;")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(rv.Int(), 10))
		buf.WriteByte(';')
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		buf.WriteString(strconv.FormatUint(rv.Uint(), 10))
		buf.WriteByte(';')
	case reflect.Float32, reflect.Float64:
		return writeFloat(buf, rv.Float())
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return writeFloat(buf, real(c)) && writeFloat(buf, imag(c))
	case reflect.String:
		writeString(buf, rv.String())
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		buf.WriteString("@")
		buf.WriteString(strconv.FormatUint(uint64(rv.Pointer()), 16))
		buf.WriteByte(';')
	case reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("nil;")
			return true
		}
		e := rv.Elem()
		writeType(buf, e.Type())
		return encode(buf, e)
	case reflect.Array:
		buf.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if !encode(buf, rv.Index(i)) {
				return false
			}
		}
		buf.WriteByte(']')
	case reflect.Struct:
		buf.WriteByte('{')
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).Name == "_" {
				continue // == ignores blank fields
			}
			if !encode(buf, rv.Field(i)) {
				return false
			}
		}
		buf.WriteByte('}')
	default: // slice, map, func
		return false
	}
	return true
}
