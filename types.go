// Package workflow implements the core of an agent-orchestration workflow
// engine: a graph-structured, superstep-synchronous, message-passing
// runtime that schedules directed computations ("executors") connected by
// typed edges.
//
// The package is the CORE only. Concrete orchestration patterns (handoff
// chains, manager/worker orchestration, MCP glue), chat-client/LLM
// integrations, and visualization are external collaborators layered on
// top of this runtime and are not implemented here.
package workflow

import "reflect"

// TypeKind discriminates the shape of a handler's declared input or output
// type. Handler types are never matched by stringified class name; they are
// represented as a tagged variant and matched with reflection, per the
// design notes on dynamic dispatch over possibly-generic, possibly-union
// declarations.
type TypeKind int

const (
	// KindNone declares "no outputs" (a terminal handler).
	KindNone TypeKind = iota
	// KindExact matches a single concrete Go type exactly or by nominal
	// subtyping (assignability).
	KindExact
	// KindUnion matches if the value satisfies any of a set of TypeDecls.
	KindUnion
	// KindGeneric matches a generic container origin (slice, map, pointer)
	// whose elements themselves satisfy a nested TypeDecl, e.g. []string.
	KindGeneric
	// KindAny matches any value.
	KindAny
)

// TypeDecl is a handler's declared input type, or a handler's declared
// output-type envelope. It is built once at registration time and
// evaluated against runtime values during dispatch.
type TypeDecl struct {
	Kind TypeKind

	// Type is the concrete reflect.Type for KindExact.
	Type reflect.Type

	// Members holds the alternatives for KindUnion.
	Members []TypeDecl

	// Origin is the reflect.Kind of container for KindGeneric
	// (reflect.Slice, reflect.Map, or reflect.Ptr).
	Origin reflect.Kind

	// Elem is the element TypeDecl nested inside a KindGeneric container.
	// For maps this describes the value type; keys are not constrained.
	Elem *TypeDecl
}

// None declares a handler that produces no outbound messages.
func None() TypeDecl { return TypeDecl{Kind: KindNone} }

// Any declares a handler input or output that accepts any value.
func Any() TypeDecl { return TypeDecl{Kind: KindAny} }

// Exact declares a handler type bound to the exact (or nominally
// assignable) Go type of example.
func Exact(example any) TypeDecl {
	if example == nil {
		return TypeDecl{Kind: KindAny}
	}
	return TypeDecl{Kind: KindExact, Type: reflect.TypeOf(example)}
}

// ExactType declares a handler type bound to t directly, for cases where
// constructing a zero example value is awkward (interfaces, unexported
// types).
func ExactType(t reflect.Type) TypeDecl {
	return TypeDecl{Kind: KindExact, Type: t}
}

// Union declares a handler type that accepts any of the given alternatives.
func Union(members ...TypeDecl) TypeDecl {
	return TypeDecl{Kind: KindUnion, Members: members}
}

// SliceOf declares a handler type that accepts a slice whose elements all
// satisfy elem, e.g. SliceOf(Exact("")) for []string. This is the
// generic-origin case called out in the design notes: fan-in targets
// declare their input as SliceOf(T) to accept the aggregated payload.
func SliceOf(elem TypeDecl) TypeDecl {
	return TypeDecl{Kind: KindGeneric, Origin: reflect.Slice, Elem: &elem}
}

// MapOf declares a handler type that accepts a map whose values all
// satisfy elem.
func MapOf(elem TypeDecl) TypeDecl {
	return TypeDecl{Kind: KindGeneric, Origin: reflect.Map, Elem: &elem}
}

// Accepts reports whether value satisfies this type declaration. It is the
// dynamic half of the type-safety contract (the static half is enforced by
// validateGraph at build time): case analysis over the tagged variant, never a
// comparison of type names.
func (d TypeDecl) Accepts(value any) bool {
	switch d.Kind {
	case KindNone:
		return false
	case KindAny:
		return true
	case KindExact:
		if value == nil {
			return d.Type == nil
		}
		vt := reflect.TypeOf(value)
		if vt == d.Type {
			return true
		}
		return d.Type != nil && vt.AssignableTo(d.Type)
	case KindUnion:
		for _, m := range d.Members {
			if m.Accepts(value) {
				return true
			}
		}
		return false
	case KindGeneric:
		if value == nil {
			return false
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() != d.Origin {
			return false
		}
		switch d.Origin {
		case reflect.Slice:
			for i := 0; i < rv.Len(); i++ {
				if d.Elem != nil && !d.Elem.Accepts(rv.Index(i).Interface()) {
					return false
				}
			}
			return true
		case reflect.Map:
			iter := rv.MapRange()
			for iter.Next() {
				if d.Elem != nil && !d.Elem.Accepts(iter.Value().Interface()) {
					return false
				}
			}
			return true
		case reflect.Ptr:
			if rv.IsNil() {
				return false
			}
			return d.Elem == nil || d.Elem.Accepts(rv.Elem().Interface())
		default:
			return false
		}
	default:
		return false
	}
}

// specificity gives a rough ordering used to break ties when more than one
// handler could accept a value: exact beats generic beats union beats any.
// Handler selection in Executor.dispatch still honors first-registered-wins
// on an exact tie, per spec §4.1.
func (d TypeDecl) specificity() int {
	switch d.Kind {
	case KindExact:
		return 3
	case KindGeneric:
		return 2
	case KindUnion:
		return 1
	case KindAny:
		return 0
	default:
		return -1
	}
}

// isSubtypeOf reports whether values described by d as an output-type
// envelope would also satisfy other as an input declaration; a KindUnion d
// qualifies when at least one of its members does. This is the
// static half of the validator's type-compatibility check (§4.6): it is
// directional, unlike overlaps — a KindAny output is not a subtype of a
// concrete input, even though the two dynamically overlap, and KindNone
// (a handler that sends nothing) is never a subtype of anything.
func (d TypeDecl) isSubtypeOf(other TypeDecl) bool {
	if d.Kind == KindNone {
		return false
	}
	if other.Kind == KindAny {
		return true
	}
	switch d.Kind {
	case KindAny:
		return false
	case KindUnion:
		for _, m := range d.Members {
			if m.isSubtypeOf(other) {
				return true
			}
		}
		return false
	case KindExact:
		switch other.Kind {
		case KindExact:
			return d.Type == other.Type || (d.Type != nil && other.Type != nil && d.Type.AssignableTo(other.Type))
		case KindUnion:
			for _, m := range other.Members {
				if d.isSubtypeOf(m) {
					return true
				}
			}
			return false
		default:
			return false
		}
	case KindGeneric:
		switch other.Kind {
		case KindGeneric:
			if d.Origin != other.Origin {
				return false
			}
			if d.Elem == nil || other.Elem == nil {
				return true
			}
			return d.Elem.isSubtypeOf(*other.Elem)
		case KindUnion:
			for _, m := range other.Members {
				if d.isSubtypeOf(m) {
					return true
				}
			}
			return false
		default:
			return false
		}
	default:
		return false
	}
}

// overlaps reports whether two input type declarations could both accept
// some common value, used by the validator's handler-ambiguity warning.
func (d TypeDecl) overlaps(other TypeDecl) bool {
	if d.Kind == KindAny || other.Kind == KindAny {
		return true
	}
	if d.Kind == KindExact && other.Kind == KindExact {
		return d.Type == other.Type
	}
	if d.Kind == KindUnion {
		for _, m := range d.Members {
			if m.overlaps(other) {
				return true
			}
		}
		return false
	}
	if other.Kind == KindUnion {
		return other.overlaps(d)
	}
	if d.Kind == KindGeneric && other.Kind == KindGeneric {
		return d.Origin == other.Origin
	}
	return false
}
