package csp

import (
	"iter"
	"slices"
)

// ordered is a string-keyed map that remembers insertion order.
// Re-setting an existing key keeps its position.
type ordered[V any] struct {
	keys []string
	m    map[string]V
}

func (o *ordered[V]) get(key string) (v V, ok bool) {
	if o == nil || o.m == nil {
		return v, false
	}
	v, ok = o.m[key]
	return v, ok
}

func (o *ordered[V]) set(key string, v V) {
	if o.m == nil {
		o.m = make(map[string]V)
	}
	if _, ok := o.m[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.m[key] = v
}

func (o *ordered[V]) delete(key string) {
	if _, ok := o.m[key]; !ok {
		return
	}
	delete(o.m, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

func (o *ordered[V]) len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *ordered[V]) all() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.m[k]) {
				return
			}
		}
	}
}
