package xsd

// Kind tags a schema component handle with its component kind at runtime.
// It backs the dynamic handle used by the top-level driver's cycle tracker
// (see driver.go); typed handles (Handle[T]) never need to inspect it
// directly, but carry the same ordering so Dynamic(kind, h) is cheap.
type Kind uint8

const (
	KindAnnotation Kind = iota
	KindAssertion
	KindAttributeDeclaration
	KindAttributeGroupDefinition
	KindAttributeUse
	KindComplexTypeDefinition
	KindConstrainingFacet
	KindElementDeclaration
	KindIdentityConstraintDefinition
	KindModelGroup
	KindModelGroupDefinition
	KindNotationDeclaration
	KindParticle
	KindSimpleTypeDefinition
	KindTypeAlternative
	KindWildcard
)

func (k Kind) String() string {
	switch k {
	case KindAnnotation:
		return "Annotation"
	case KindAssertion:
		return "Assertion"
	case KindAttributeDeclaration:
		return "AttributeDeclaration"
	case KindAttributeGroupDefinition:
		return "AttributeGroupDefinition"
	case KindAttributeUse:
		return "AttributeUse"
	case KindComplexTypeDefinition:
		return "ComplexTypeDefinition"
	case KindConstrainingFacet:
		return "ConstrainingFacet"
	case KindElementDeclaration:
		return "ElementDeclaration"
	case KindIdentityConstraintDefinition:
		return "IdentityConstraintDefinition"
	case KindModelGroup:
		return "ModelGroup"
	case KindModelGroupDefinition:
		return "ModelGroupDefinition"
	case KindNotationDeclaration:
		return "NotationDeclaration"
	case KindParticle:
		return "Particle"
	case KindSimpleTypeDefinition:
		return "SimpleTypeDefinition"
	case KindTypeAlternative:
		return "TypeAlternative"
	case KindWildcard:
		return "Wildcard"
	default:
		return "Unknown"
	}
}

// DynamicHandle is a kind-tagged, untyped handle. The driver's pending
// entries (one per reserved top-level component, of any kind, each with its
// own in-progress flag) carry one, and a CircularDependency SchemaError
// reports it in Handle.
type DynamicHandle struct {
	Kind  Kind
	Index uint32
}

// Handle is a stable, non-owning, typed reference into the arena. It carries
// no data of its own beyond a 1-based index; dereferencing always goes
// through the arena (construction or frozen). The zero Handle[T] is never
// valid — index 0 means "unreserved".
type Handle[T any] struct {
	index uint32
}

// IsZero reports whether h was never reserved.
func (h Handle[T]) IsZero() bool { return h.index == 0 }

// Index exposes the 1-based slot index, for callers (e.g. the automaton's
// label-canonicalization map) that need a comparable/hashable key derived
// from a handle without reaching into the arena.
func (h Handle[T]) Index() uint32 { return h.index }

// Dynamic returns the kind-tagged untyped form of h, for the cycle tracker.
func Dynamic[T any](kind Kind, h Handle[T]) DynamicHandle {
	return DynamicHandle{Kind: kind, Index: h.index}
}

// TypeRefKind discriminates the TypeDefinition tagged union (§3 Components).
type TypeRefKind uint8

const (
	TypeRefUnset TypeRefKind = iota
	TypeRefSimple
	TypeRefComplex
)

// TypeRef is the tagged union of simple/complex type-definition handles.
// Exactly one of Simple/Complex is populated when Kind != TypeRefUnset.
type TypeRef struct {
	Kind    TypeRefKind
	Simple  Handle[SimpleTypeDefinition]
	Complex Handle[ComplexTypeDefinition]
}

func SimpleTypeRef(h Handle[SimpleTypeDefinition]) TypeRef {
	return TypeRef{Kind: TypeRefSimple, Simple: h}
}

func ComplexTypeRef(h Handle[ComplexTypeDefinition]) TypeRef {
	return TypeRef{Kind: TypeRefComplex, Complex: h}
}

func (r TypeRef) IsSimple() bool  { return r.Kind == TypeRefSimple }
func (r TypeRef) IsComplex() bool { return r.Kind == TypeRefComplex }
