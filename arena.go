package xsd

import "fmt"

// table is the generic slot vector behind every per-kind accessor on Arena.
// A nil slot means "reserved but not yet populated" (construction-phase
// lifecycle, §3). Index 0 is never used — Handle's zero value must stay
// invalid.
type table[T any] struct {
	slots []*T
}

func (t *table[T]) reserve() Handle[T] {
	t.slots = append(t.slots, nil)
	return Handle[T]{index: uint32(len(t.slots))}
}

func (t *table[T]) insert(h Handle[T], v T) {
	if h.index == 0 || int(h.index) > len(t.slots) {
		panic(fmt.Sprintf("xsd: insert into unreserved handle (index %d)", h.index))
	}
	vv := v
	t.slots[h.index-1] = &vv
}

func (t *table[T]) create(v T) Handle[T] {
	h := t.reserve()
	t.insert(h, v)
	return h
}

func (t *table[T]) isPresent(h Handle[T]) bool {
	return h.index != 0 && int(h.index) <= len(t.slots) && t.slots[h.index-1] != nil
}

func (t *table[T]) get(h Handle[T]) *T {
	if !t.isPresent(h) {
		var zero T
		panic(fmt.Sprintf("xsd: absent component %T (handle index %d)", zero, h.index))
	}
	return t.slots[h.index-1]
}

// firstAbsent returns the 1-based index of the first unpopulated slot, or 0
// if every reserved slot has been filled.
func (t *table[T]) firstAbsent() int {
	for i, s := range t.slots {
		if s == nil {
			return i + 1
		}
	}
	return 0
}

func (t *table[T]) freeze() []T {
	out := make([]T, len(t.slots))
	for i, s := range t.slots {
		out[i] = *s
	}
	return out
}

// Arena is the mutable construction-phase component store (C1). Exactly one
// table per component kind; mappers reserve a handle, map content, and
// insert — or reserve+fill in one step via the CreateX helpers. Ownership of
// every component lives here and only here.
type Arena struct {
	annotations  table[Annotation]
	assertions   table[Assertion]
	attrDecls    table[AttributeDeclaration]
	attrGroups   table[AttributeGroupDefinition]
	attrUses     table[AttributeUse]
	complexTypes table[ComplexTypeDefinition]
	facets       table[ConstrainingFacet]
	elementDecls table[ElementDeclaration]
	idConstrs    table[IdentityConstraintDefinition]
	modelGroups  table[ModelGroup]
	groupDefs    table[ModelGroupDefinition]
	notations    table[NotationDeclaration]
	particles    table[Particle]
	simpleTypes  table[SimpleTypeDefinition]
	typeAlts     table[TypeAlternative]
	wildcards    table[Wildcard]
}

func NewArena() *Arena { return &Arena{} }

// Per-kind reserve/insert/create/get/isPresent. Repetitive by design — one
// mapping procedure per kind (§4.4) gets one arena surface per kind, with no
// reflection-driven dispatch hiding which table a Handle[T] indexes into.

func (a *Arena) ReserveAnnotation() Handle[Annotation] { return a.annotations.reserve() }
func (a *Arena) InsertAnnotation(h Handle[Annotation], v Annotation) { a.annotations.insert(h, v) }
func (a *Arena) CreateAnnotation(v Annotation) Handle[Annotation]    { return a.annotations.create(v) }
func (a *Arena) GetAnnotation(h Handle[Annotation]) *Annotation      { return a.annotations.get(h) }
func (a *Arena) HasAnnotation(h Handle[Annotation]) bool             { return a.annotations.isPresent(h) }

func (a *Arena) ReserveAssertion() Handle[Assertion] { return a.assertions.reserve() }
func (a *Arena) InsertAssertion(h Handle[Assertion], v Assertion) { a.assertions.insert(h, v) }
func (a *Arena) CreateAssertion(v Assertion) Handle[Assertion]    { return a.assertions.create(v) }
func (a *Arena) GetAssertion(h Handle[Assertion]) *Assertion      { return a.assertions.get(h) }
func (a *Arena) HasAssertion(h Handle[Assertion]) bool            { return a.assertions.isPresent(h) }

func (a *Arena) ReserveAttributeDeclaration() Handle[AttributeDeclaration] {
	return a.attrDecls.reserve()
}
func (a *Arena) InsertAttributeDeclaration(h Handle[AttributeDeclaration], v AttributeDeclaration) {
	a.attrDecls.insert(h, v)
}
func (a *Arena) CreateAttributeDeclaration(v AttributeDeclaration) Handle[AttributeDeclaration] {
	return a.attrDecls.create(v)
}
func (a *Arena) GetAttributeDeclaration(h Handle[AttributeDeclaration]) *AttributeDeclaration {
	return a.attrDecls.get(h)
}
func (a *Arena) HasAttributeDeclaration(h Handle[AttributeDeclaration]) bool {
	return a.attrDecls.isPresent(h)
}

func (a *Arena) ReserveAttributeGroupDefinition() Handle[AttributeGroupDefinition] {
	return a.attrGroups.reserve()
}
func (a *Arena) InsertAttributeGroupDefinition(h Handle[AttributeGroupDefinition], v AttributeGroupDefinition) {
	a.attrGroups.insert(h, v)
}
func (a *Arena) CreateAttributeGroupDefinition(v AttributeGroupDefinition) Handle[AttributeGroupDefinition] {
	return a.attrGroups.create(v)
}
func (a *Arena) GetAttributeGroupDefinition(h Handle[AttributeGroupDefinition]) *AttributeGroupDefinition {
	return a.attrGroups.get(h)
}
func (a *Arena) HasAttributeGroupDefinition(h Handle[AttributeGroupDefinition]) bool {
	return a.attrGroups.isPresent(h)
}

func (a *Arena) ReserveAttributeUse() Handle[AttributeUse] { return a.attrUses.reserve() }
func (a *Arena) InsertAttributeUse(h Handle[AttributeUse], v AttributeUse) { a.attrUses.insert(h, v) }
func (a *Arena) CreateAttributeUse(v AttributeUse) Handle[AttributeUse]    { return a.attrUses.create(v) }
func (a *Arena) GetAttributeUse(h Handle[AttributeUse]) *AttributeUse      { return a.attrUses.get(h) }
func (a *Arena) HasAttributeUse(h Handle[AttributeUse]) bool               { return a.attrUses.isPresent(h) }

func (a *Arena) ReserveComplexTypeDefinition() Handle[ComplexTypeDefinition] {
	return a.complexTypes.reserve()
}
func (a *Arena) InsertComplexTypeDefinition(h Handle[ComplexTypeDefinition], v ComplexTypeDefinition) {
	a.complexTypes.insert(h, v)
}
func (a *Arena) CreateComplexTypeDefinition(v ComplexTypeDefinition) Handle[ComplexTypeDefinition] {
	return a.complexTypes.create(v)
}
func (a *Arena) GetComplexTypeDefinition(h Handle[ComplexTypeDefinition]) *ComplexTypeDefinition {
	return a.complexTypes.get(h)
}
func (a *Arena) HasComplexTypeDefinition(h Handle[ComplexTypeDefinition]) bool {
	return a.complexTypes.isPresent(h)
}

func (a *Arena) ReserveConstrainingFacet() Handle[ConstrainingFacet] { return a.facets.reserve() }
func (a *Arena) InsertConstrainingFacet(h Handle[ConstrainingFacet], v ConstrainingFacet) {
	a.facets.insert(h, v)
}
func (a *Arena) CreateConstrainingFacet(v ConstrainingFacet) Handle[ConstrainingFacet] {
	return a.facets.create(v)
}
func (a *Arena) GetConstrainingFacet(h Handle[ConstrainingFacet]) *ConstrainingFacet {
	return a.facets.get(h)
}
func (a *Arena) HasConstrainingFacet(h Handle[ConstrainingFacet]) bool { return a.facets.isPresent(h) }

func (a *Arena) ReserveElementDeclaration() Handle[ElementDeclaration] {
	return a.elementDecls.reserve()
}
func (a *Arena) InsertElementDeclaration(h Handle[ElementDeclaration], v ElementDeclaration) {
	a.elementDecls.insert(h, v)
}
func (a *Arena) CreateElementDeclaration(v ElementDeclaration) Handle[ElementDeclaration] {
	return a.elementDecls.create(v)
}
func (a *Arena) GetElementDeclaration(h Handle[ElementDeclaration]) *ElementDeclaration {
	return a.elementDecls.get(h)
}
func (a *Arena) HasElementDeclaration(h Handle[ElementDeclaration]) bool {
	return a.elementDecls.isPresent(h)
}

func (a *Arena) ReserveIdentityConstraintDefinition() Handle[IdentityConstraintDefinition] {
	return a.idConstrs.reserve()
}
func (a *Arena) InsertIdentityConstraintDefinition(h Handle[IdentityConstraintDefinition], v IdentityConstraintDefinition) {
	a.idConstrs.insert(h, v)
}
func (a *Arena) CreateIdentityConstraintDefinition(v IdentityConstraintDefinition) Handle[IdentityConstraintDefinition] {
	return a.idConstrs.create(v)
}
func (a *Arena) GetIdentityConstraintDefinition(h Handle[IdentityConstraintDefinition]) *IdentityConstraintDefinition {
	return a.idConstrs.get(h)
}
func (a *Arena) HasIdentityConstraintDefinition(h Handle[IdentityConstraintDefinition]) bool {
	return a.idConstrs.isPresent(h)
}

func (a *Arena) ReserveModelGroup() Handle[ModelGroup] { return a.modelGroups.reserve() }
func (a *Arena) InsertModelGroup(h Handle[ModelGroup], v ModelGroup) { a.modelGroups.insert(h, v) }
func (a *Arena) CreateModelGroup(v ModelGroup) Handle[ModelGroup]    { return a.modelGroups.create(v) }
func (a *Arena) GetModelGroup(h Handle[ModelGroup]) *ModelGroup      { return a.modelGroups.get(h) }
func (a *Arena) HasModelGroup(h Handle[ModelGroup]) bool             { return a.modelGroups.isPresent(h) }

func (a *Arena) ReserveModelGroupDefinition() Handle[ModelGroupDefinition] {
	return a.groupDefs.reserve()
}
func (a *Arena) InsertModelGroupDefinition(h Handle[ModelGroupDefinition], v ModelGroupDefinition) {
	a.groupDefs.insert(h, v)
}
func (a *Arena) CreateModelGroupDefinition(v ModelGroupDefinition) Handle[ModelGroupDefinition] {
	return a.groupDefs.create(v)
}
func (a *Arena) GetModelGroupDefinition(h Handle[ModelGroupDefinition]) *ModelGroupDefinition {
	return a.groupDefs.get(h)
}
func (a *Arena) HasModelGroupDefinition(h Handle[ModelGroupDefinition]) bool {
	return a.groupDefs.isPresent(h)
}

func (a *Arena) ReserveNotationDeclaration() Handle[NotationDeclaration] { return a.notations.reserve() }
func (a *Arena) InsertNotationDeclaration(h Handle[NotationDeclaration], v NotationDeclaration) {
	a.notations.insert(h, v)
}
func (a *Arena) CreateNotationDeclaration(v NotationDeclaration) Handle[NotationDeclaration] {
	return a.notations.create(v)
}
func (a *Arena) GetNotationDeclaration(h Handle[NotationDeclaration]) *NotationDeclaration {
	return a.notations.get(h)
}
func (a *Arena) HasNotationDeclaration(h Handle[NotationDeclaration]) bool {
	return a.notations.isPresent(h)
}

func (a *Arena) ReserveParticle() Handle[Particle] { return a.particles.reserve() }
func (a *Arena) InsertParticle(h Handle[Particle], v Particle) { a.particles.insert(h, v) }
func (a *Arena) CreateParticle(v Particle) Handle[Particle]    { return a.particles.create(v) }
func (a *Arena) GetParticle(h Handle[Particle]) *Particle      { return a.particles.get(h) }
func (a *Arena) HasParticle(h Handle[Particle]) bool            { return a.particles.isPresent(h) }

func (a *Arena) ReserveSimpleTypeDefinition() Handle[SimpleTypeDefinition] {
	return a.simpleTypes.reserve()
}
func (a *Arena) InsertSimpleTypeDefinition(h Handle[SimpleTypeDefinition], v SimpleTypeDefinition) {
	a.simpleTypes.insert(h, v)
}
func (a *Arena) CreateSimpleTypeDefinition(v SimpleTypeDefinition) Handle[SimpleTypeDefinition] {
	return a.simpleTypes.create(v)
}
func (a *Arena) GetSimpleTypeDefinition(h Handle[SimpleTypeDefinition]) *SimpleTypeDefinition {
	return a.simpleTypes.get(h)
}
func (a *Arena) HasSimpleTypeDefinition(h Handle[SimpleTypeDefinition]) bool {
	return a.simpleTypes.isPresent(h)
}

func (a *Arena) ReserveTypeAlternative() Handle[TypeAlternative] { return a.typeAlts.reserve() }
func (a *Arena) InsertTypeAlternative(h Handle[TypeAlternative], v TypeAlternative) {
	a.typeAlts.insert(h, v)
}
func (a *Arena) CreateTypeAlternative(v TypeAlternative) Handle[TypeAlternative] {
	return a.typeAlts.create(v)
}
func (a *Arena) GetTypeAlternative(h Handle[TypeAlternative]) *TypeAlternative {
	return a.typeAlts.get(h)
}
func (a *Arena) HasTypeAlternative(h Handle[TypeAlternative]) bool { return a.typeAlts.isPresent(h) }

func (a *Arena) ReserveWildcard() Handle[Wildcard] { return a.wildcards.reserve() }
func (a *Arena) InsertWildcard(h Handle[Wildcard], v Wildcard) { a.wildcards.insert(h, v) }
func (a *Arena) CreateWildcard(v Wildcard) Handle[Wildcard]    { return a.wildcards.create(v) }
func (a *Arena) GetWildcard(h Handle[Wildcard]) *Wildcard      { return a.wildcards.get(h) }
func (a *Arena) HasWildcard(h Handle[Wildcard]) bool            { return a.wildcards.isPresent(h) }

// AbsentComponentError is raised by Freeze when a reserved slot was never
// populated (invariant 1, §7 "AbsentComponentValue").
type AbsentComponentError struct {
	Kind  Kind
	Index int
}

func (e *AbsentComponentError) Error() string {
	return fmt.Sprintf("xsd: absent component value: %s slot %d was reserved but never populated", e.Kind, e.Index)
}

// Freeze converts the construction Arena into a read-only FrozenArena. It
// fails if any reserved slot, in any table, is still absent.
func (a *Arena) Freeze() (*FrozenArena, error) {
	type checked struct {
		kind Kind
		idx  int
	}
	firstAbsent := []checked{
		{KindAnnotation, a.annotations.firstAbsent()},
		{KindAssertion, a.assertions.firstAbsent()},
		{KindAttributeDeclaration, a.attrDecls.firstAbsent()},
		{KindAttributeGroupDefinition, a.attrGroups.firstAbsent()},
		{KindAttributeUse, a.attrUses.firstAbsent()},
		{KindComplexTypeDefinition, a.complexTypes.firstAbsent()},
		{KindConstrainingFacet, a.facets.firstAbsent()},
		{KindElementDeclaration, a.elementDecls.firstAbsent()},
		{KindIdentityConstraintDefinition, a.idConstrs.firstAbsent()},
		{KindModelGroup, a.modelGroups.firstAbsent()},
		{KindModelGroupDefinition, a.groupDefs.firstAbsent()},
		{KindNotationDeclaration, a.notations.firstAbsent()},
		{KindParticle, a.particles.firstAbsent()},
		{KindSimpleTypeDefinition, a.simpleTypes.firstAbsent()},
		{KindTypeAlternative, a.typeAlts.firstAbsent()},
		{KindWildcard, a.wildcards.firstAbsent()},
	}
	for _, c := range firstAbsent {
		if c.idx != 0 {
			return nil, &AbsentComponentError{Kind: c.kind, Index: c.idx}
		}
	}

	return &FrozenArena{
		annotations:  a.annotations.freeze(),
		assertions:   a.assertions.freeze(),
		attrDecls:    a.attrDecls.freeze(),
		attrGroups:   a.attrGroups.freeze(),
		attrUses:     a.attrUses.freeze(),
		complexTypes: a.complexTypes.freeze(),
		facets:       a.facets.freeze(),
		elementDecls: a.elementDecls.freeze(),
		idConstrs:    a.idConstrs.freeze(),
		modelGroups:  a.modelGroups.freeze(),
		groupDefs:    a.groupDefs.freeze(),
		notations:    a.notations.freeze(),
		particles:    a.particles.freeze(),
		simpleTypes:  a.simpleTypes.freeze(),
		typeAlts:     a.typeAlts.freeze(),
		wildcards:    a.wildcards.freeze(),
	}, nil
}

// FrozenArena is the dense, read-only component table produced by Freeze.
// It may be shared between the validator and the code generator without
// synchronization — nothing ever mutates it again (§5 shared-resource
// policy).
type FrozenArena struct {
	annotations  []Annotation
	assertions   []Assertion
	attrDecls    []AttributeDeclaration
	attrGroups   []AttributeGroupDefinition
	attrUses     []AttributeUse
	complexTypes []ComplexTypeDefinition
	facets       []ConstrainingFacet
	elementDecls []ElementDeclaration
	idConstrs    []IdentityConstraintDefinition
	modelGroups  []ModelGroup
	groupDefs    []ModelGroupDefinition
	notations    []NotationDeclaration
	particles    []Particle
	simpleTypes  []SimpleTypeDefinition
	typeAlts     []TypeAlternative
	wildcards    []Wildcard
}

func (f *FrozenArena) Annotation(h Handle[Annotation]) Annotation { return f.annotations[h.index-1] }
func (f *FrozenArena) Assertion(h Handle[Assertion]) Assertion    { return f.assertions[h.index-1] }
func (f *FrozenArena) AttributeDeclaration(h Handle[AttributeDeclaration]) AttributeDeclaration {
	return f.attrDecls[h.index-1]
}
func (f *FrozenArena) AttributeGroupDefinition(h Handle[AttributeGroupDefinition]) AttributeGroupDefinition {
	return f.attrGroups[h.index-1]
}
func (f *FrozenArena) AttributeUse(h Handle[AttributeUse]) AttributeUse { return f.attrUses[h.index-1] }
func (f *FrozenArena) ComplexTypeDefinition(h Handle[ComplexTypeDefinition]) ComplexTypeDefinition {
	return f.complexTypes[h.index-1]
}
func (f *FrozenArena) ConstrainingFacet(h Handle[ConstrainingFacet]) ConstrainingFacet {
	return f.facets[h.index-1]
}
func (f *FrozenArena) ElementDeclaration(h Handle[ElementDeclaration]) ElementDeclaration {
	return f.elementDecls[h.index-1]
}
func (f *FrozenArena) IdentityConstraintDefinition(h Handle[IdentityConstraintDefinition]) IdentityConstraintDefinition {
	return f.idConstrs[h.index-1]
}
func (f *FrozenArena) ModelGroup(h Handle[ModelGroup]) ModelGroup { return f.modelGroups[h.index-1] }
func (f *FrozenArena) ModelGroupDefinition(h Handle[ModelGroupDefinition]) ModelGroupDefinition {
	return f.groupDefs[h.index-1]
}
func (f *FrozenArena) NotationDeclaration(h Handle[NotationDeclaration]) NotationDeclaration {
	return f.notations[h.index-1]
}
func (f *FrozenArena) Particle(h Handle[Particle]) Particle { return f.particles[h.index-1] }
func (f *FrozenArena) SimpleTypeDefinition(h Handle[SimpleTypeDefinition]) SimpleTypeDefinition {
	return f.simpleTypes[h.index-1]
}
func (f *FrozenArena) TypeAlternative(h Handle[TypeAlternative]) TypeAlternative {
	return f.typeAlts[h.index-1]
}
func (f *FrozenArena) Wildcard(h Handle[Wildcard]) Wildcard { return f.wildcards[h.index-1] }

// NumComplexTypeDefinitions reports the dense table size, letting callers
// (the driver's post-freeze automaton pass) iterate every complex type by
// 1-based handle without tracking reservation order separately.
func (f *FrozenArena) NumComplexTypeDefinitions() int { return len(f.complexTypes) }

func complexTypeHandleAt(i int) Handle[ComplexTypeDefinition] { return Handle[ComplexTypeDefinition]{index: uint32(i + 1)} }

// TypeDefinitionName resolves a TypeRef to its QName, looking in whichever
// table the union selects.
func (f *FrozenArena) TypeDefinitionName(r TypeRef) QName {
	switch r.Kind {
	case TypeRefSimple:
		return f.SimpleTypeDefinition(r.Simple).Name
	case TypeRefComplex:
		return f.ComplexTypeDefinition(r.Complex).Name
	default:
		return QName{}
	}
}
