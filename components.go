package xsd

// This file declares the property records for the sixteen component kinds
// named in spec.md §3 (TypeDefinition itself is the TypeRef tagged union in
// kind.go, not a component in its own right — it owns no arena slot).
// Every field that "contains" another component is a Handle, never a value;
// ownership lives exclusively in the Arena (arena.go).

// ---- Annotation ------------------------------------------------------

type AnnotationChildKind uint8

const (
	AppInfoChild AnnotationChildKind = iota
	DocumentationChild
)

// AnnotationChild preserves one <appinfo>/<documentation> child, serialized
// back to text; round-trip fidelity is not guaranteed (§9 design note).
type AnnotationChild struct {
	Kind   AnnotationChildKind
	Source string // optional source/xml:lang attribute
	Text   string
}

type Annotation struct {
	Children []AnnotationChild
}

// ---- shared XPath carrier (§9: captured, not evaluated, by the core) ----

// XPathExpression captures enough of an XPath 2.0 expression's static
// context to re-evaluate it later: its in-scope namespace bindings, default
// namespace, base URI, and raw text. Evaluation is left to an injected
// engine (assertions.go); the validator evaluates neither assertions nor
// type alternatives, whether or not an engine is set.
type XPathExpression struct {
	Namespaces       map[string]string
	DefaultNamespace string
	BaseURI          string
	Expression       string
}

// ---- Assertion --------------------------------------------------------

type Assertion struct {
	Test       XPathExpression
	Annotation Handle[Annotation]
}

// ---- value constraints (shared by AttributeDeclaration, AttributeUse,
//      ElementDeclaration) ----------------------------------------------

type ValueConstraintVariety uint8

const (
	NoValueConstraint ValueConstraintVariety = iota
	DefaultValueConstraint
	FixedValueConstraint
)

type ValueConstraint struct {
	Variety ValueConstraintVariety
	Lexical string
}

// ---- scope (shared by AttributeDeclaration, ElementDeclaration) -------

type ScopeVariety uint8

const (
	GlobalScope ScopeVariety = iota
	LocalScope
)

// Scope.Parent is set only for local element declarations nested directly
// in a named <group>, where it holds the group definition's handle (§9's
// open question; see mappers_groups.go's mapTopLevelGroup). Every other
// local declaration leaves Parent zero.
type Scope struct {
	Variety ScopeVariety
	Parent  DynamicHandle
}

// ---- AttributeDeclaration ---------------------------------------------

type AttributeDeclaration struct {
	Name            QName
	TypeDefinition  Handle[SimpleTypeDefinition]
	Scope           Scope
	ValueConstraint ValueConstraint
	Inheritable     bool
	Annotation      Handle[Annotation]
}

// ---- AttributeUse -------------------------------------------------------

type AttributeUse struct {
	Required        bool
	Prohibited      bool // use="prohibited": the attribute must not appear on the instance element
	Declaration     Handle[AttributeDeclaration]
	ValueConstraint ValueConstraint
	Inheritable     bool
	Annotation      Handle[Annotation]
}

// ---- AttributeGroupDefinition -------------------------------------------

type AttributeGroupDefinition struct {
	Name       QName
	Uses       []Handle[AttributeUse]
	Wildcard   Handle[Wildcard]
	Annotation Handle[Annotation]
}

// ---- DerivationBlock (shared shape for block/final/blockDefault/
//      finalDefault and the substitution-group exclusions table, §4.4) --

type DerivationBlock struct {
	Extension    bool
	Restriction  bool
	Substitution bool // only meaningful for element "block"
}

func (b DerivationBlock) Any() bool { return b.Extension || b.Restriction || b.Substitution }

// ---- ComplexTypeDefinition ----------------------------------------------

type DerivationMethod uint8

const (
	DerivationRestriction DerivationMethod = iota
	DerivationExtension
)

type ContentVariety uint8

const (
	ContentEmpty ContentVariety = iota
	ContentSimple
	ContentElementOnly
	ContentMixed
)

type OpenContentMode uint8

const (
	OpenContentInterleave OpenContentMode = iota
	OpenContentSuffix
)

type OpenContent struct {
	Mode     OpenContentMode
	Wildcard Handle[Wildcard]
}

// ContentType is the "exactly one of Empty/Simple/ElementOnly/Mixed" value
// from invariant 6; Variety discriminates which of the remaining fields is
// meaningful.
type ContentType struct {
	Variety     ContentVariety
	SimpleType  Handle[SimpleTypeDefinition] // ContentSimple
	Particle    Handle[Particle]             // ContentElementOnly / ContentMixed
	OpenContent *OpenContent                 // ContentElementOnly / ContentMixed, optional
}

type ComplexTypeDefinition struct {
	Name              QName
	BaseType          TypeRef
	DerivationMethod  DerivationMethod
	Content           ContentType
	Abstract          bool
	AttributeUses     []Handle[AttributeUse]
	AttributeWildcard Handle[Wildcard]
	Final             DerivationBlock
	Prohibited        DerivationBlock // "block" on the type itself (abstract element group exclusions live on ElementDeclaration)
	Assertions        []Handle[Assertion]
	Annotation        Handle[Annotation]
}

// ---- ConstrainingFacet ---------------------------------------------------

type FacetKind uint8

const (
	FacetLength FacetKind = iota
	FacetMinLength
	FacetMaxLength
	FacetPattern
	FacetEnumeration
	FacetWhiteSpace
	FacetMaxInclusive
	FacetMaxExclusive
	FacetMinInclusive
	FacetMinExclusive
	FacetTotalDigits
	FacetFractionDigits
	FacetAssertions
	FacetExplicitTimezone
)

type WhiteSpaceValue uint8

const (
	WhiteSpacePreserve WhiteSpaceValue = iota
	WhiteSpaceReplace
	WhiteSpaceCollapse
)

type ExplicitTimezoneValue uint8

const (
	TimezoneOptional ExplicitTimezoneValue = iota
	TimezoneRequired
	TimezoneProhibited
)

// ConstrainingFacet covers every singular and set-valued facet kind from the
// §4.4 facet-mapping table; only the fields relevant to Kind are populated.
type ConstrainingFacet struct {
	Kind       FacetKind
	Value      string   // singular facets' lexical value
	Values     []string // Enumeration's value set
	Pattern    string   // Pattern's already |-joined regex
	WhiteSpace WhiteSpaceValue
	Timezone   ExplicitTimezoneValue
	Assertions []Handle[Assertion] // FacetAssertions, document order
	Fixed      bool
	Annotation Handle[Annotation]
}

// ---- ElementDeclaration --------------------------------------------------

type ElementDeclaration struct {
	Name                          QName
	TypeDefinition                TypeRef
	TypeTable                     []Handle[TypeAlternative] // document order; a nil-test alternative, if any, is last (the default)
	Nillable                      bool
	ValueConstraint               ValueConstraint
	IdentityConstraints           []Handle[IdentityConstraintDefinition]
	SubstitutionGroupAffiliations []Handle[ElementDeclaration]
	SubstitutionGroupExclusions   DerivationBlock
	Disallowed                    DerivationBlock // "block"
	Abstract                      bool
	Scope                         Scope
	Annotation                    Handle[Annotation]
}

// ---- IdentityConstraintDefinition -----------------------------------------

type IdentityConstraintCategory uint8

const (
	ICKey IdentityConstraintCategory = iota
	ICKeyRef
	ICUnique
)

type IdentityConstraintDefinition struct {
	Name       QName
	Category   IdentityConstraintCategory
	Selector   XPathExpression
	Fields     []XPathExpression
	Refer      Handle[IdentityConstraintDefinition] // KeyRef only
	Annotation Handle[Annotation]
}

// ---- ModelGroup / ModelGroupDefinition -------------------------------------

type Compositor uint8

const (
	CompositorSequence Compositor = iota
	CompositorChoice
	CompositorAll
)

type ModelGroup struct {
	Compositor Compositor
	Particles  []Handle[Particle]
	// Annotation is not populated by the mappers: a <sequence>/<choice>
	// annotation is recorded on the Particle whose term is this group
	// (invariant 5), and a named group's on its ModelGroupDefinition.
	Annotation Handle[Annotation]
}

type ModelGroupDefinition struct {
	Name       QName
	ModelGroup Handle[ModelGroup]
	Annotation Handle[Annotation]
}

// ---- NotationDeclaration ----------------------------------------------------

type NotationDeclaration struct {
	Name       QName
	SystemID   string
	PublicID   string
	Annotation Handle[Annotation]
}

// ---- Particle ----------------------------------------------------------------

type TermKind uint8

const (
	TermElement TermKind = iota
	TermModelGroup
	TermWildcard
)

// OccursBound is maxOccurs; Unbounded means "unbounded" was written.
type OccursBound struct {
	Value     int
	Unbounded bool
}

func boundedMax(n int) OccursBound { return OccursBound{Value: n} }
func unboundedMax() OccursBound    { return OccursBound{Unbounded: true} }

// Particle carries min/maxOccurs and a term. Per invariant 5, Element- and
// Wildcard-termed particles have no Annotation of their own (it delegates to
// the term); only Group-termed particles set Annotation.
type Particle struct {
	Min        int
	Max        OccursBound
	TermKind   TermKind
	Element    Handle[ElementDeclaration]
	Group      Handle[ModelGroup]
	Wildcard   Handle[Wildcard]
	Annotation Handle[Annotation]
}

// ---- SimpleTypeDefinition -----------------------------------------------------

type Variety uint8

const (
	VarietyAtomic Variety = iota
	VarietyList
	VarietyUnion
)

type Ordered uint8

const (
	OrderedFalse Ordered = iota
	OrderedPartial
	OrderedTotal
)

type Cardinality uint8

const (
	CardinalityFinite Cardinality = iota
	CardinalityCountablyInfinite
)

// FundamentalFacets mirrors the normative Table F.1 columns used by the
// built-in registrar (C3) — ordered, bounded, cardinality, numeric.
type FundamentalFacets struct {
	Ordered     Ordered
	Bounded     bool
	Cardinality Cardinality
	Numeric     bool
}

type SimpleTypeDefinition struct {
	Name        QName
	Base        Handle[SimpleTypeDefinition]
	Variety     Variety
	Primitive   Handle[SimpleTypeDefinition] // atomic only, transitively inherited through Base
	ItemType    Handle[SimpleTypeDefinition]  // list only
	MemberTypes []Handle[SimpleTypeDefinition] // union only, document+memberTypes order
	Facets      []Handle[ConstrainingFacet]
	Fundamental FundamentalFacets
	Final       DerivationBlock
	Annotation  Handle[Annotation]
}

// ---- TypeAlternative -----------------------------------------------------------

// TypeAlternative is one row of an ElementDeclaration's type table (§4.4).
// Test == nil marks the default alternative (no test attribute); if present
// there is at most one and it is last in document order.
type TypeAlternative struct {
	Test       *XPathExpression
	TypeRef    TypeRef
	Annotation Handle[Annotation]
}

// ---- Wildcard --------------------------------------------------------------------

type NamespaceConstraintVariety uint8

const (
	NSAny NamespaceConstraintVariety = iota
	NSEnumeration
	NSNot
)

// NamespaceConstraint's Namespaces set uses "" to mean the absent namespace
// (##local), matching the §4.4 wildcard table's resolution of ##local and
// ##targetNamespace into concrete members.
type NamespaceConstraint struct {
	Variety    NamespaceConstraintVariety
	Namespaces []string
}

type ProcessContents uint8

const (
	ProcessStrict ProcessContents = iota
	ProcessLax
	ProcessSkip
)

// DisallowedNames is notQName parsed into explicit QNames plus the two
// special tokens.
type DisallowedNames struct {
	QNames         []QName
	Defined        bool
	DefinedSibling bool
}

type Wildcard struct {
	Namespace       NamespaceConstraint
	Disallowed      DisallowedNames
	ProcessContents ProcessContents
	Annotation      Handle[Annotation]
}
