// Package filter implements the chainable metadata predicate engine
// evaluated at search match time, and a transient bitmap hint (see
// hint.go) used to help, but never bind, the index layer during filtered
// search.
package filter

import "vecstore/internal/metadata"

type op int

const (
	opEq op = iota
	opNe
	opGt
	opGte
	opLt
	opLte
	opIn
)

type condition struct {
	field string
	op    op
	value metadata.Value
	set   []metadata.Value // for In
}

// Filter is a conjunction ("AND") of field conditions. The zero value
// matches everything.
type Filter struct {
	conditions []condition
}

func New() *Filter { return &Filter{} }

func (f *Filter) Eq(field string, v metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opEq, value: v})
	return f
}

func (f *Filter) Ne(field string, v metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opNe, value: v})
	return f
}

func (f *Filter) Gt(field string, v metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opGt, value: v})
	return f
}

func (f *Filter) Gte(field string, v metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opGte, value: v})
	return f
}

func (f *Filter) Lt(field string, v metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opLt, value: v})
	return f
}

func (f *Filter) Lte(field string, v metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opLte, value: v})
	return f
}

func (f *Filter) In(field string, values []metadata.Value) *Filter {
	f.conditions = append(f.conditions, condition{field: field, op: opIn, set: values})
	return f
}

// Matches reports whether every condition holds against meta. An empty
// filter (nil or no conditions) matches everything.
func (f *Filter) Matches(meta metadata.Map) bool {
	if f == nil {
		return true
	}
	for _, c := range f.conditions {
		if !c.matches(meta) {
			return false
		}
	}
	return true
}

func (c condition) matches(meta metadata.Map) bool {
	actual, present := meta[c.field]
	switch c.op {
	case opEq:
		return present && actual.Equal(c.value)
	case opNe:
		return !present || !actual.Equal(c.value)
	case opIn:
		if !present {
			return false
		}
		for _, v := range c.set {
			if actual.Equal(v) {
				return true
			}
		}
		return false
	case opGt, opGte, opLt, opLte:
		if !present {
			return false
		}
		af, aok := actual.AsFloat64()
		bf, bok := c.value.AsFloat64()
		if !aok || !bok {
			return false
		}
		switch c.op {
		case opGt:
			return af > bf
		case opGte:
			return af >= bf
		case opLt:
			return af < bf
		default:
			return af <= bf
		}
	default:
		return false
	}
}
