package csp

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/rs/zerolog/log"
)

// Normalize converts the accepted shorthands into a PolicySet:
//
//   - nil yields an empty set
//   - a PolicySet is deep-copied
//   - a Policy is wrapped under DefaultPolicyName
//   - a map with string keys, of any value type, is treated as named
//     policies when its first value (by sorted key) is itself a mapping,
//     otherwise as a single default policy
//
// Other inputs carry no directives; they yield an empty set and a warning.
// raw is never modified.
func Normalize(raw any) *PolicySet {
	switch raw := raw.(type) {
	case nil:
		return NewPolicySet()
	case *PolicySet:
		return raw.Clone()
	case PolicySet:
		return raw.Clone()
	case *Policy:
		if raw == nil {
			return NewPolicySet()
		}
		return NewPolicySet().Set(DefaultPolicyName, raw.Clone())
	case Policy:
		return NewPolicySet().Set(DefaultPolicyName, raw.Clone())
	}

	m, ok := asMapping(raw)
	if !ok {
		log.Warn().Str("type", fmt.Sprintf("%T", raw)).Msg("csp: ignoring policies of unsupported type")
		return NewPolicySet()
	}
	if len(m) == 0 {
		return NewPolicySet()
	}
	keys := slices.Sorted(maps.Keys(m))
	if !isMapping(m[keys[0]]) {
		return NewPolicySet().Set(DefaultPolicyName, policyOf(m))
	}
	out := NewPolicySet()
	for _, name := range keys {
		if !isMapping(m[name]) {
			log.Warn().Str("policy", name).Msg("csp: ignoring policy that is not a directive mapping")
			continue
		}
		out.Set(name, policyOf(m[name]))
	}
	return out
}

// asMapping returns v as map[string]any when v is a map keyed by strings,
// or a non-nil pointer to one.
func asMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func isMapping(v any) bool {
	switch v := v.(type) {
	case *Policy:
		return v != nil
	case Policy:
		return true
	}
	_, ok := asMapping(v)
	return ok
}

// policyOf converts a directive mapping into a Policy with directives in
// sorted order.
func policyOf(v any) *Policy {
	switch v := v.(type) {
	case *Policy:
		return v.Clone()
	case Policy:
		return v.Clone()
	}
	p := NewPolicy()
	m, _ := asMapping(v)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		p.Set(k, ValueOf(m[k]))
	}
	return p
}
