package fingerprint

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
	stringerType = reflect.TypeFor[fmt.Stringer]()
)

// PropertyFingerprint captures a named set of property values off an object.
type PropertyFingerprint struct {
	props []Property
}

// NewPropertyFingerprint reads the named properties off obj, which must be a
// struct, a pointer to a struct, or a map with string keys. Only the named
// properties take part in equality.
func NewPropertyFingerprint(obj any, names ...string) (*PropertyFingerprint, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, zerr.With(ErrUnsupportedObject, "type", fmt.Sprintf("%T", obj))
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, zerr.With(ErrUnsupportedObject, "type", "nil")
	}

	props := make([]Property, 0, len(names))
	for _, name := range slices.Compact(slices.Sorted(slices.Values(names))) {
		field, err := lookup(v, name)
		if err != nil {
			return nil, zerr.With(err, "property", name)
		}
		typ, val := render(field)
		props = append(props, Property{Name: name, Type: typ, Value: val})
	}
	return newPropertyFingerprint(props), nil
}

func newPropertyFingerprint(props []Property) *PropertyFingerprint {
	slices.SortFunc(props, func(a, b Property) int { return strings.Compare(a.Name, b.Name) })
	return &PropertyFingerprint{props: props}
}

// Protocol implements Fingerprint.
func (f *PropertyFingerprint) Protocol() Protocol {
	return Protocol{
		Kind:       KindProperty,
		Properties: slices.Clone(f.props),
	}
}

// Equal implements Fingerprint.
func (f *PropertyFingerprint) Equal(other Fingerprint) bool {
	return Equal(f, other)
}

// Properties returns the captured properties sorted by name.
func (f *PropertyFingerprint) Properties() []Property {
	return slices.Clone(f.props)
}

func lookup(v reflect.Value, name string) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Struct:
		sf, ok := v.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			return reflect.Value{}, ErrUnknownProperty
		}
		field, err := v.FieldByIndexErr(sf.Index)
		if err != nil {
			return reflect.Value{}, zerr.Wrap(err, ErrUnknownProperty.Error())
		}
		return field, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, zerr.With(ErrUnsupportedObject, "type", v.Type().String())
		}
		field := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !field.IsValid() {
			return reflect.Value{}, ErrUnknownProperty
		}
		return field, nil
	default:
		return reflect.Value{}, zerr.With(ErrUnsupportedObject, "type", v.Type().String())
	}
}

// maxDepth bounds how deep render follows nested values, so that pointer
// cycles terminate.
const maxDepth = 32

// render turns a value into its canonical (type, value) pair. Scalars keep
// their plain text; composite values are encoded by encode.
func render(v reflect.Value) (string, string) {
	v, ok := indirect(v)
	if !ok {
		return "nil", ""
	}
	typ := v.Type().String()
	if text, _, ok := scalar(v); ok {
		return typ, text
	}
	return typ, encode(v, 0)
}

// indirect follows pointers and interfaces. It reports false for nil.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// scalar returns the text of a scalar value and whether that text needs
// quoting inside a composite.
func scalar(v reflect.Value) (text string, quoted, ok bool) {
	switch {
	case v.Type() == durationType:
		return time.Duration(v.Int()).String(), true, true
	case v.Type() == timeType && v.CanInterface():
		t, _ := v.Interface().(time.Time)
		return t.UTC().Format(time.RFC3339Nano), true, true
	case v.Type().Implements(stringerType) && v.CanInterface():
		s, _ := v.Interface().(fmt.Stringer)
		return s.String(), true, true
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), true, true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), false, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), false, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), false, true
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), false, true
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), false, true
	default:
		return "", false, false
	}
}

// encode renders v so that distinct values never share an encoding: text is
// quoted, and slices, maps and structs are delimited recursively.
func encode(v reflect.Value, depth int) string {
	v, ok := indirect(v)
	if !ok {
		return "nil"
	}
	if depth > maxDepth {
		return "<cycle>"
	}
	if text, quoted, ok := scalar(v); ok {
		if quoted {
			return strconv.Quote(text)
		}
		return text
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, v.Len())
		for i := range v.Len() {
			parts[i] = encode(v.Index(i), depth+1)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		entries := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			entries = append(entries, encode(iter.Key(), depth+1)+":"+encode(iter.Value(), depth+1))
		}
		slices.Sort(entries)
		return "{" + strings.Join(entries, ",") + "}"
	case reflect.Struct:
		t := v.Type()
		fields := make([]string, 0, t.NumField())
		for i := range t.NumField() {
			if sf := t.Field(i); sf.IsExported() {
				fields = append(fields, sf.Name+":"+encode(v.Field(i), depth+1))
			}
		}
		return t.String() + "{" + strings.Join(fields, ",") + "}"
	default:
		// Channels and functions carry no comparable state.
		return "<" + v.Kind().String() + ">"
	}
}
