package tabular

import (
	"maps"
	"slices"
)

// Property is a named value that can be attached to columns.
type Property struct {
	Name  string
	Value any
}

func Prop(name string, value any) Property {
	return Property{Name: name, Value: value}
}

// Properties holds uniquely named values of arbitrary type.
type Properties struct {
	Elements map[string]any `json:"elements,omitempty" msgpack:"elements,omitempty"`
}

func Props(props ...Property) *Properties {
	p := &Properties{Elements: make(map[string]any)}
	for _, prop := range props {
		p.Elements[prop.Name] = prop.Value
	}
	return p
}

func (p *Properties) Set(name string, value any) *Properties {
	if p.Elements == nil {
		p.Elements = make(map[string]any)
	}
	p.Elements[name] = value
	return p
}

func (p *Properties) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := p.Elements[name]; !ok {
			return false
		}
	}
	return true
}

func (p *Properties) Remove(names ...string) *Properties {
	for _, name := range names {
		delete(p.Elements, name)
	}
	return p
}

func (p *Properties) Names() []string {
	return slices.Sorted(maps.Keys(p.Elements))
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Elements)
}

// GetProp returns the named value, failing if it is missing or not a T.
func GetProp[T any](p *Properties, name string) (T, error) {
	var zero T
	if p == nil {
		return zero, ErrPropNotFound(name)
	}
	v, ok := p.Elements[name]
	if !ok {
		return zero, ErrPropNotFound(name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, ErrPropType(name, v, zero)
	}
	return typed, nil
}

// GetPropOr is GetProp with a fallback for missing or mistyped values.
func GetPropOr[T any](p *Properties, name string, fallback T) T {
	v, err := GetProp[T](p, name)
	if err != nil {
		return fallback
	}
	return v
}
