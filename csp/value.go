package csp

import (
	"fmt"
	"reflect"
	"strings"
)

type Kind uint8

const (
	KindUnset Kind = iota
	KindFlag
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindList:
		return "list"
	default:
		return "unset"
	}
}

// token is a source expression. lazy tokens are resolved when the policy
// is compiled.
type token struct {
	text string
	lazy fmt.Stringer
}

func (t token) String() string {
	if t.lazy != nil {
		return t.lazy.String()
	}
	return t.text
}

// Value is the value of one directive: unset, a flag, or an ordered list of
// tokens. The zero Value is unset.
type Value struct {
	kind   Kind
	on     bool
	tokens []token
}

// Unset returns the unset value. As a replace instruction it drops the
// directive.
func Unset() Value {
	return Value{}
}

func Flag(on bool) Value {
	return Value{kind: KindFlag, on: on}
}

// List returns a token list. List() with no tokens is a present, empty
// list and renders as the bare directive name.
func List(tokens ...string) Value {
	v := Value{kind: KindList, tokens: make([]token, len(tokens))}
	for i, t := range tokens {
		v.tokens[i] = token{text: t}
	}
	return v
}

// Deferred returns a single token whose text is produced by s at compile
// time.
func Deferred(s fmt.Stringer) Value {
	return Value{kind: KindList, tokens: []token{{lazy: s}}}
}

// ValueOf converts v to a Value. It never fails: slices and arrays of any
// element type become lists, anything that is neither a flag nor a
// sequence becomes a single token.
func ValueOf(v any) Value {
	switch v := v.(type) {
	case nil:
		return Unset()
	case Value:
		return v.Clone()
	case *Value:
		if v == nil {
			return Unset()
		}
		return v.Clone()
	case bool:
		return Flag(v)
	case string:
		return List(v)
	case []string:
		return List(v...)
	case []byte:
		return List(string(v))
	case []any:
		return listOf(v)
	case fmt.Stringer:
		return Deferred(v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return listOf(elems)
	}
	return List(fmt.Sprint(v))
}

// listOf converts a sequence. A leading bool makes it a flag.
func listOf(elems []any) Value {
	if len(elems) > 0 {
		if b, ok := elems[0].(bool); ok {
			return Flag(b)
		}
	}
	out := Value{kind: KindList, tokens: make([]token, 0, len(elems))}
	for _, e := range elems {
		out.tokens = append(out.tokens, tokenOf(e))
	}
	return out
}

func tokenOf(v any) token {
	switch v := v.(type) {
	case string:
		return token{text: v}
	case fmt.Stringer:
		return token{lazy: v}
	default:
		return token{text: fmt.Sprint(v)}
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsSet() bool {
	return v.kind != KindUnset
}

// Enabled reports whether v is a flag that is switched on.
func (v Value) Enabled() bool {
	return v.kind == KindFlag && v.on
}

func (v Value) Len() int {
	return len(v.tokens)
}

// Tokens returns the resolved token texts. Flags and unset values have none.
func (v Value) Tokens() []string {
	if v.kind != KindList {
		return nil
	}
	out := make([]string, len(v.tokens))
	for i, t := range v.tokens {
		out[i] = t.String()
	}
	return out
}

func (v Value) deferred() bool {
	for _, t := range v.tokens {
		if t.lazy != nil {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no storage with v.
func (v Value) Clone() Value {
	if v.tokens != nil {
		v.tokens = append(make([]token, 0, len(v.tokens)), v.tokens...)
	}
	return v
}

// Append returns v followed by other.
//
// Appending to an unset value yields other. A flag in other replaces v,
// a list appended to a flag replaces the flag.
func (v Value) Append(other Value) Value {
	switch {
	case other.kind == KindUnset:
		return v.Clone()
	case v.kind != KindList, other.kind == KindFlag:
		return other.Clone()
	}
	out := Value{kind: KindList, tokens: make([]token, 0, len(v.tokens)+len(other.tokens))}
	out.tokens = append(out.tokens, v.tokens...)
	out.tokens = append(out.tokens, other.tokens...)
	return out
}

func (v Value) String() string {
	switch v.kind {
	case KindFlag:
		if v.on {
			return "true"
		}
		return "false"
	case KindList:
		return strings.Join(v.Tokens(), " ")
	default:
		return "<unset>"
	}
}
