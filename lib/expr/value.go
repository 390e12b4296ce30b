package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UndefinedValue is the type of Undefined.
type UndefinedValue struct{}

func (UndefinedValue) String() string { return "undefined" }

// Undefined is the result of reading a missing property and the value bound
// actions receive when evaluation fails.
var Undefined = UndefinedValue{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedValue)
	return ok
}

// Getter is implemented by values that expose named properties to
// expressions without reflection.
type Getter interface {
	Property(name string) (any, bool)
}

func isNullish(v any) bool {
	return v == nil || IsUndefined(v)
}

// ToString converts v to its display form: "undefined", "null", "true",
// integral numbers without a fraction, sequences joined with commas.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case UndefinedValue:
		return "undefined"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatNumber(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			elem := rv.Index(i).Interface()
			if !isNullish(elem) {
				parts[i] = ToString(elem)
			}
		}
		return strings.Join(parts, ",")
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return ToString(rv.Elem().Interface())
	}
	return "[object Object]"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case math.Abs(f) >= 1e21 || math.Abs(f) < 1e-6:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v counts as true in a condition.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil, UndefinedValue:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := numberOf(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return false
	}
	return true
}

// numberOf converts Go numeric kinds to float64.
func numberOf(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// ToNumber converts v to a float64, yielding NaN for values without a
// numeric reading.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case UndefinedValue:
		return math.NaN()
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	if f, ok := numberOf(v); ok {
		return f
	}
	return math.NaN()
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, UndefinedValue, bool, string:
		return true
	}
	_, ok := numberOf(v)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// Property reads the named property of obj. The boolean result reports
// whether the property exists; a missing property yields Undefined. Reading
// from null or undefined is a *TypeError.
func Property(obj any, name string) (any, bool, error) {
	if isNullish(obj) {
		return Undefined, false, &TypeError{Msg: fmt.Sprintf("cannot read properties of %s (reading '%s')", ToString(obj), name)}
	}
	if g, ok := obj.(Getter); ok {
		if v, found := g.Property(name); found {
			return v, true, nil
		}
		return Undefined, false, nil
	}
	if s, ok := obj.(string); ok {
		return stringProperty(s, name)
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Undefined, false, &TypeError{Msg: fmt.Sprintf("cannot read properties of null (reading '%s')", name)}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Undefined, false, nil
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return Undefined, false, nil
		}
		return mv.Interface(), true, nil
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return rv.Len(), true, nil
		}
		if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < rv.Len() {
			return rv.Index(i).Interface(), true, nil
		}
		return Undefined, false, nil
	case reflect.Struct:
		fv, ok, err := structField(rv, name)
		if err != nil {
			return Undefined, false, err
		}
		if ok {
			return fv.Interface(), true, nil
		}
		return Undefined, false, nil
	case reflect.String:
		return stringProperty(rv.String(), name)
	}
	return Undefined, false, nil
}

func stringProperty(s, name string) (any, bool, error) {
	if name == "length" {
		return utf8.RuneCountInString(s), true, nil
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 {
		runes := []rune(s)
		if i < len(runes) {
			return string(runes[i]), true, nil
		}
	}
	return Undefined, false, nil
}

// structField finds an exported field by exact name, json tag, or the name
// with its first letter upper-cased. A field promoted through a nil embedded
// pointer is a *TypeError.
func structField(rv reflect.Value, name string) (reflect.Value, bool, error) {
	t := rv.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return promotedField(rv, f.Index, name)
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag != "" && tag == name {
			return rv.Field(i), true, nil
		}
	}
	if r, size := utf8.DecodeRuneInString(name); r != utf8.RuneError && unicode.IsLower(r) {
		upper := string(unicode.ToUpper(r)) + name[size:]
		if f, ok := t.FieldByName(upper); ok && f.IsExported() {
			return promotedField(rv, f.Index, name)
		}
	}
	return reflect.Value{}, false, nil
}

func promotedField(rv reflect.Value, index []int, name string) (reflect.Value, bool, error) {
	fv, err := rv.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}, false, &TypeError{Msg: fmt.Sprintf("cannot read properties of null (reading '%s')", name)}
	}
	return fv, true, nil
}

// propertyKey converts an index operand into a property name.
func propertyKey(v any) string {
	if f, ok := numberOf(v); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return ToString(v)
}
