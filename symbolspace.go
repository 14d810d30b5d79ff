package xsd

// symbolSpace maps qualified names to handles of one kind T (§3 invariant 2:
// every kind except type definitions gets its own space). Registration
// order is preserved in `order` for diagnostic reproducibility (§5 ordering
// guarantees).
type symbolSpace[T any] struct {
	byName map[QName]Handle[T]
	order  []QName
}

func newSymbolSpace[T any]() *symbolSpace[T] {
	return &symbolSpace[T]{byName: make(map[QName]Handle[T])}
}

func (s *symbolSpace[T]) register(name QName, h Handle[T], overwrite BuiltinOverwriteAction, isBuiltinName func(QName) bool) error {
	if existing, ok := s.byName[name]; ok {
		if isBuiltinName != nil && isBuiltinName(name) {
			switch overwrite {
			case OverwriteAllow:
				s.byName[name] = h
				return nil
			case OverwriteWarn:
				s.byName[name] = h
				return nil // no warning is recorded for these spaces; only Resolver.RegisterType records one
			case OverwriteDeny:
				return nameError(ErrDuplicateComponent, name)
			}
		}
		_ = existing
		return nameError(ErrDuplicateComponent, name)
	}
	s.byName[name] = h
	s.order = append(s.order, name)
	return nil
}

func (s *symbolSpace[T]) resolve(name QName) (Handle[T], bool) {
	h, ok := s.byName[name]
	return h, ok
}

// AttributeDeclarationSpace through IdentityConstraintSpace are the six
// symbol spaces that do not share with type definitions (§3 invariant 2).
type AttributeDeclarationSpace = symbolSpace[AttributeDeclaration]
type ElementDeclarationSpace = symbolSpace[ElementDeclaration]
type AttributeGroupSpace = symbolSpace[AttributeGroupDefinition]
type ModelGroupDefinitionSpace = symbolSpace[ModelGroupDefinition]
type NotationSpace = symbolSpace[NotationDeclaration]
type IdentityConstraintSpace = symbolSpace[IdentityConstraintDefinition]

// typeSymbolSpace implements the shared simple/complex symbol space
// (invariant 2): one name table keyed by QName, each entry tagged with
// which of the two kinds it is so lookups can be narrowed.
type typeSymbolSpace struct {
	byName map[QName]TypeRef
	order  []QName
}

func newTypeSymbolSpace() *typeSymbolSpace {
	return &typeSymbolSpace{byName: make(map[QName]TypeRef)}
}

func (s *typeSymbolSpace) register(name QName, ref TypeRef, overwrite BuiltinOverwriteAction, isBuiltinName func(QName) bool) error {
	if _, ok := s.byName[name]; ok {
		if isBuiltinName != nil && isBuiltinName(name) {
			switch overwrite {
			case OverwriteAllow, OverwriteWarn:
				s.byName[name] = ref
				return nil
			case OverwriteDeny:
				return nameError(ErrDuplicateComponent, name)
			}
		}
		return nameError(ErrDuplicateComponent, name)
	}
	s.byName[name] = ref
	s.order = append(s.order, name)
	return nil
}

func (s *typeSymbolSpace) resolve(name QName) (TypeRef, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// resolveSimple narrows a shared-space lookup to a simple type, returning
// false on a kind mismatch (the type exists but is complex).
func (s *typeSymbolSpace) resolveSimple(name QName) (Handle[SimpleTypeDefinition], bool) {
	r, ok := s.byName[name]
	if !ok || r.Kind != TypeRefSimple {
		return Handle[SimpleTypeDefinition]{}, false
	}
	return r.Simple, true
}

func (s *typeSymbolSpace) resolveComplex(name QName) (Handle[ComplexTypeDefinition], bool) {
	r, ok := s.byName[name]
	if !ok || r.Kind != TypeRefComplex {
		return Handle[ComplexTypeDefinition]{}, false
	}
	return r.Complex, true
}

// BuiltinOverwriteAction is the schema-read policy toggle for what happens
// when a user schema registers a qname in the XS namespace that collides
// with a built-in (§6).
type BuiltinOverwriteAction uint8

const (
	OverwriteDeny BuiltinOverwriteAction = iota
	OverwriteWarn
	OverwriteAllow
)

// RegisterBuiltins toggles whether the built-in registrar (C3) prepopulates
// the resolver before any user mapping begins.
type RegisterBuiltins uint8

const (
	RegisterBuiltinsYes RegisterBuiltins = iota
	RegisterBuiltinsNo
)

// Resolver is C2: one symbol space per component kind (types share one),
// and the overwrite policy (the import chaser lives on the driver). Every mapper consults it to
// turn an XML `ref`/`type`/`base` attribute into a handle.
type Resolver struct {
	Types              *typeSymbolSpace
	Elements           *ElementDeclarationSpace
	Attributes         *AttributeDeclarationSpace
	AttributeGroups    *AttributeGroupSpace
	ModelGroupDefs     *ModelGroupDefinitionSpace
	Notations          *NotationSpace
	IdentityConstraints *IdentityConstraintSpace

	overwrite    BuiltinOverwriteAction
	isBuiltin    func(QName) bool
	warnings     []string
}

func NewResolver(overwrite BuiltinOverwriteAction) *Resolver {
	return &Resolver{
		Types:               newTypeSymbolSpace(),
		Elements:             newSymbolSpace[ElementDeclaration](),
		Attributes:           newSymbolSpace[AttributeDeclaration](),
		AttributeGroups:      newSymbolSpace[AttributeGroupDefinition](),
		ModelGroupDefs:       newSymbolSpace[ModelGroupDefinition](),
		Notations:            newSymbolSpace[NotationDeclaration](),
		IdentityConstraints:  newSymbolSpace[IdentityConstraintDefinition](),
		overwrite:            overwrite,
	}
}

// SetBuiltinPredicate installs the "is this qname one of our built-ins"
// test, used to decide whether a DuplicateComponent is actually an allowed
// overwrite (§4.3 registration policy). Called once by the built-in
// registrar after it finishes.
func (r *Resolver) SetBuiltinPredicate(p func(QName) bool) { r.isBuiltin = p }

func (r *Resolver) RegisterType(name QName, ref TypeRef) error {
	if err := r.Types.register(name, ref, r.overwrite, r.isBuiltin); err != nil {
		return err
	}
	if r.overwrite == OverwriteWarn && r.isBuiltin != nil && r.isBuiltin(name) {
		r.warnings = append(r.warnings, "overwrote built-in type "+name.String())
	}
	return nil
}

func (r *Resolver) RegisterElement(name QName, h Handle[ElementDeclaration]) error {
	return r.Elements.register(name, h, r.overwrite, r.isBuiltin)
}

func (r *Resolver) RegisterAttribute(name QName, h Handle[AttributeDeclaration]) error {
	return r.Attributes.register(name, h, r.overwrite, r.isBuiltin)
}

func (r *Resolver) RegisterAttributeGroup(name QName, h Handle[AttributeGroupDefinition]) error {
	return r.AttributeGroups.register(name, h, r.overwrite, r.isBuiltin)
}

func (r *Resolver) RegisterModelGroupDefinition(name QName, h Handle[ModelGroupDefinition]) error {
	return r.ModelGroupDefs.register(name, h, r.overwrite, r.isBuiltin)
}

func (r *Resolver) RegisterNotation(name QName, h Handle[NotationDeclaration]) error {
	return r.Notations.register(name, h, r.overwrite, r.isBuiltin)
}

func (r *Resolver) RegisterIdentityConstraint(name QName, h Handle[IdentityConstraintDefinition]) error {
	return r.IdentityConstraints.register(name, h, r.overwrite, r.isBuiltin)
}

// Warnings returns every OverwriteWarn notice accumulated so far.
func (r *Resolver) Warnings() []string { return r.warnings }

// unresolvedReference is the helper mappers use to turn a resolve-miss into
// a SchemaError, matching the teacher's "return a placeholder, fail in the
// second pass" shape but surfacing immediately since our driver resolves on
// demand rather than in a blanket second pass (§4.5 phase B).
func unresolvedReference(name QName) error {
	return nameError(ErrUnresolvedReference, name)
}
