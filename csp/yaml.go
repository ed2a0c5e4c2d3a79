package csp

import (
	"errors"
	"fmt"

	"github.com/yusing/cspolicy/errs"
	"gopkg.in/yaml.v3"
)

var errValueShape = errors.New("expected null, a boolean, a string or a list of strings")

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		return v.UnmarshalYAML(node.Alias)
	}
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			*v = Unset()
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*v = Flag(b)
		default:
			*v = List(node.Value)
		}
		return nil
	case yaml.SequenceNode:
		tokens := make([]string, 0, len(node.Content))
		for i, item := range node.Content {
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.ScalarNode {
				return errs.PrependSubject(fmt.Sprintf("[%d]", i), errValueShape)
			}
			tokens = append(tokens, item.Value)
		}
		*v = List(tokens...)
		return nil
	default:
		return fmt.Errorf("line %d: %w", node.Line, errValueShape)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindFlag:
		return v.on, nil
	case KindList:
		return v.Tokens(), nil
	default:
		return nil, nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler. Directive order follows the
// document.
func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		return p.UnmarshalYAML(node.Alias)
	}
	*p = Policy{}
	if node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of directives", node.Line)
	}
	var eb errs.Builder
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		var v Value
		if err := val.Decode(&v); err != nil {
			eb.AddSubject(key, err)
			continue
		}
		p.Set(key, v)
	}
	return eb.Error()
}

// MarshalYAML implements yaml.Marshaler.
func (p *Policy) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range p.All() {
		var val yaml.Node
		enc, _ := v.MarshalYAML()
		if err := val.Encode(enc); err != nil {
			return nil, errs.PrependSubject(k, err)
		}
		if v.kind == KindList {
			val.Style = yaml.FlowStyle
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &val)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
//
// A mapping whose first value is itself a mapping is a set of named
// policies; any other mapping is a single policy stored as
// DefaultPolicyName.
func (s *PolicySet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		return s.UnmarshalYAML(node.Alias)
	}
	*s = PolicySet{}
	if node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of policies", node.Line)
	}
	if len(node.Content) == 0 {
		return nil
	}
	first := node.Content[1]
	if first.Kind == yaml.AliasNode {
		first = first.Alias
	}
	if first.Kind != yaml.MappingNode {
		p := NewPolicy()
		if err := node.Decode(p); err != nil {
			return errs.PrependSubject(DefaultPolicyName, err)
		}
		s.Set(DefaultPolicyName, p)
		return nil
	}
	var eb errs.Builder
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		p := NewPolicy()
		if err := node.Content[i+1].Decode(p); err != nil {
			eb.AddSubject(name, err)
			continue
		}
		s.Set(name, p)
	}
	return eb.Error()
}

// MarshalYAML implements yaml.Marshaler.
func (s *PolicySet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for name, p := range s.All() {
		val, err := p.MarshalYAML()
		if err != nil {
			return nil, errs.PrependSubject(name, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, val.(*yaml.Node))
	}
	return node, nil
}

// UnmarshalJSON decodes JSON through the YAML decoder so that document
// order is kept.
func (s *PolicySet) UnmarshalJSON(data []byte) error {
	return yaml.Unmarshal(data, s)
}

// UnmarshalJSON decodes JSON through the YAML decoder so that document
// order is kept.
func (p *Policy) UnmarshalJSON(data []byte) error {
	return yaml.Unmarshal(data, p)
}
