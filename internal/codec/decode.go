package codec

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mwhost/server/internal/netdata"
)

// ErrMalformed is returned when the top-level text is not valid JSON.
var ErrMalformed = errors.New("malformed message")

// Decode parses text into a generic tree of map[string]any, []any, string,
// int64, float64, bool and nil. Objects tagged with a known class become
// the matching netdata record; unknown classes stay plain maps.
func Decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrMalformed)
	}
	return rebuild(raw), nil
}

// DecodeAs decodes text and asserts the top-level value is a T.
func DecodeAs[T any](text string) (T, error) {
	var zero T
	v, err := Decode(text)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("decode: got %T, want %T", v, zero)
	}
	return t, nil
}

// rebuild walks the tree bottom-up, so nested records exist before their
// parents are inspected.
func rebuild(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = rebuild(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = rebuild(x[k])
		}
		return fromObject(x)
	}
	return v
}

func fromObject(o map[string]any) any {
	class, _ := o[ClassKey].(string)
	switch class {
	case ClassVersion:
		if v, ok := versionFrom(o); ok {
			return v
		}
		return o
	case ClassNetworkItem:
		return netdata.NetworkItem{
			Item:     int64Field(o, "item"),
			Location: int64Field(o, "location"),
			Player:   int(int64Field(o, "player")),
			Flags:    netdata.ItemFlags(int64Field(o, "flags")),
		}
	case ClassNetworkPlayer:
		return netdata.NetworkPlayer{
			Team:     int(int64Field(o, "team")),
			Slot:     int(int64Field(o, "slot")),
			Alias:    stringField(o, "alias"),
			Name:     stringField(o, "name"),
			Pronouns: stringField(o, "pronouns"),
			Avatar:   hexField(o, "avatar"),
		}
	case ClassNetworkSlot:
		return netdata.NetworkSlot{
			Name:         stringField(o, "name"),
			Game:         stringField(o, "game"),
			Type:         netdata.SlotType(int64Field(o, "type")),
			GroupMembers: intsField(o, "group_members"),
		}
	}
	return o
}

// versionFrom accepts any capitalisation of major/minor/build since some
// clients serialise their version type with exported field names.
func versionFrom(o map[string]any) (netdata.Version, bool) {
	fold := cases.Fold()
	folded := make(map[string]any, len(o))
	for k, v := range o {
		folded[fold.String(k)] = v
	}
	var parts [3]int
	for i, name := range []string{"major", "minor", "build"} {
		n, ok := looseInt(folded[name])
		if !ok {
			return netdata.Version{}, false
		}
		parts[i] = int(n)
	}
	return netdata.Version{Major: parts[0], Minor: parts[1], Build: parts[2]}, true
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

// looseInt also accepts numeric strings.
func looseInt(v any) (int64, bool) {
	if n, ok := asInt(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func int64Field(o map[string]any, key string) int64 {
	n, _ := asInt(o[key])
	return n
}

func stringField(o map[string]any, key string) string {
	s, _ := o[key].(string)
	return s
}

// hexField decodes a hex string; invalid or missing input yields nil.
func hexField(o map[string]any, key string) []byte {
	s, ok := o[key].(string)
	if !ok {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func intsField(o map[string]any, key string) []int {
	list, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, v := range list {
		if n, ok := asInt(v); ok {
			out = append(out, int(n))
		}
	}
	return out
}
