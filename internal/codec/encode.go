// Package codec converts session values to and from the JSON interchange
// format spoken with clients. Records carry a "class" discriminator so a
// reader can rebuild the concrete type; byte fields travel as hex.
package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mwhost/server/internal/netdata"
)

// ClassKey is the reserved discriminator field on encoded records.
const ClassKey = "class"

// Record class names on the wire.
const (
	ClassNetworkItem   = "NetworkItem"
	ClassNetworkPlayer = "NetworkPlayer"
	ClassNetworkSlot   = "NetworkSlot"
	ClassVersion       = "Version"
)

// Encode renders v as compact JSON. Non-ASCII text is left as is.
func Encode(v any) (string, error) {
	b, err := marshal(scan(v))
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(b), nil
}

// marshal is json.Marshal without HTML escaping and without the trailing
// newline json.Encoder appends.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

type field struct {
	name  string
	value any
}

// object keeps record fields in declaration order.
type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(f.name)
		if err != nil {
			return nil, err
		}
		v, err := marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func scan(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case netdata.NetworkItem:
		return object{
			{"item", x.Item},
			{"location", x.Location},
			{"player", x.Player},
			{"flags", int(x.Flags)},
			{ClassKey, ClassNetworkItem},
		}
	case netdata.NetworkPlayer:
		return object{
			{"team", x.Team},
			{"slot", x.Slot},
			{"alias", x.Alias},
			{"name", x.Name},
			{"pronouns", optionalString(x.Pronouns)},
			{"avatar", optionalHex(x.Avatar)},
			{ClassKey, ClassNetworkPlayer},
		}
	case netdata.NetworkSlot:
		members := make([]any, 0, len(x.GroupMembers))
		for _, m := range x.GroupMembers {
			members = append(members, m)
		}
		return object{
			{"name", x.Name},
			{"game", x.Game},
			{"type", int(x.Type)},
			{"group_members", members},
			{ClassKey, ClassNetworkSlot},
		}
	case netdata.Version:
		return object{
			{"major", x.Major},
			{"minor", x.Minor},
			{"build", x.Build},
			{ClassKey, ClassVersion},
		}
	case []byte:
		return hex.EncodeToString(x)
	case string, bool, int, int64, float64, json.Number:
		return x
	}
	return scanReflect(reflect.ValueOf(v))
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optionalHex(b []byte) any {
	if b == nil {
		return nil
	}
	return hex.EncodeToString(b)
}

var marshalerType = reflect.TypeFor[json.Marshaler]()

func scanReflect(rv reflect.Value) any {
	if rv.Type().Implements(marshalerType) {
		return rv.Interface()
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return scan(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return []any{}
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = scan(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if isSet(rv.Type()) {
			return scanSet(rv)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = scan(iter.Value().Interface())
		}
		return out
	case reflect.Struct:
		return scanStruct(rv)
	}
	return rv.Interface()
}

// scanStruct walks exported fields in declaration order so records nested in
// other structs keep their wire layout. Field names follow encoding/json:
// the json tag name when present, else the Go name; "-" skips a field and
// omitempty drops zero values. Untagged embedded structs are flattened.
func scanStruct(rv reflect.Value) object {
	t := rv.Type()
	out := make(object, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}
		fv := rv.Field(i)
		if sf.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			out = append(out, scanStruct(fv)...)
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if strings.Contains(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		out = append(out, field{name, scan(fv.Interface())})
	}
	return out
}

// isEmptyValue matches the omitempty rule of encoding/json.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// isSet reports whether t is a map[K]struct{}.
func isSet(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

// scanSet turns a set into a sequence with a stable order.
func scanSet(rv reflect.Value) any {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = scan(k.Interface())
	}
	return out
}

func lessKey(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.String:
		return a.String() < b.String()
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}

func mapKey(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	}
	return fmt.Sprint(k.Interface())
}
