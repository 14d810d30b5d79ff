package xsd

// Built-in registrar (C3). Populates the arena and resolver with the
// normative XSD components before any user schema is mapped — mirroring
// the teacher's builtin_types.go table-driven registration, generalized
// from its flat map[string]*SimpleType into arena handles.

// Builtins carries the handles the mappers (C4) and driver (C5) need to
// look up a built-in by its well-known role, without a name-space lookup
// on every reference.
type Builtins struct {
	AnyType       Handle[ComplexTypeDefinition]
	AnySimpleType Handle[SimpleTypeDefinition]
	AnyAtomicType Handle[SimpleTypeDefinition]
	ErrorType     Handle[SimpleTypeDefinition]

	Primitives map[string]Handle[SimpleTypeDefinition]
	Derived    map[string]Handle[SimpleTypeDefinition]

	XSIType                      Handle[AttributeDeclaration]
	XSINil                       Handle[AttributeDeclaration]
	XSISchemaLocation            Handle[AttributeDeclaration]
	XSINoNamespaceSchemaLocation Handle[AttributeDeclaration]

	names map[QName]bool // every built-in qname, for the overwrite-policy predicate
}

// RegisterBuiltins populates arena and resolver per spec.md §4.3 and wires
// resolver.isBuiltin so the registration policy can distinguish a built-in
// collision from an ordinary duplicate.
func RegisterBuiltins(arena *Arena, resolver *Resolver) (*Builtins, error) {
	b := &Builtins{
		Primitives: make(map[string]Handle[SimpleTypeDefinition]),
		Derived:    make(map[string]Handle[SimpleTypeDefinition]),
		names:      make(map[QName]bool),
	}

	// anySimpleType and anyAtomicType are reserved first and filled in once
	// anyType exists. anyAtomicType's Base is anySimpleType, every
	// primitive's Base is anyAtomicType, and anySimpleType's Base stays zero.
	anySimpleHandle := arena.ReserveSimpleTypeDefinition()
	anyAtomicHandle := arena.ReserveSimpleTypeDefinition()

	anyTypeHandle := arena.CreateComplexTypeDefinition(ComplexTypeDefinition{
		Name:             xsQName("anyType"),
		BaseType:         TypeRef{}, // filled below once we know our own handle
		DerivationMethod: DerivationRestriction,
		Content: ContentType{
			Variety: ContentMixed,
			Particle: arena.CreateParticle(Particle{
				Min: 0, Max: unboundedMax(), TermKind: TermModelGroup,
				Group: arena.CreateModelGroup(ModelGroup{
					Compositor: CompositorSequence,
					Particles: []Handle[Particle]{
						arena.CreateParticle(Particle{
							Min: 0, Max: unboundedMax(), TermKind: TermWildcard,
							Wildcard: arena.CreateWildcard(Wildcard{
								Namespace:       NamespaceConstraint{Variety: NSAny},
								ProcessContents: ProcessLax,
							}),
						}),
					},
				}),
			}),
		},
	})
	// anyType's {base type definition} is itself (normative).
	ct := arena.GetComplexTypeDefinition(anyTypeHandle)
	ct.BaseType = ComplexTypeRef(anyTypeHandle)
	b.AnyType = anyTypeHandle
	b.bind(xsQName("anyType"))

	arena.InsertSimpleTypeDefinition(anySimpleHandle, SimpleTypeDefinition{
		Name: xsQName("anySimpleType"),
		Base: Handle[SimpleTypeDefinition]{}, // conceptually anyType; no simple-type handle for it
	})
	b.AnySimpleType = anySimpleHandle
	b.bind(xsQName("anySimpleType"))

	arena.InsertSimpleTypeDefinition(anyAtomicHandle, SimpleTypeDefinition{
		Name:    xsQName("anyAtomicType"),
		Base:    anySimpleHandle,
		Variety: VarietyAtomic,
		// Primitive left zero: anyAtomicType is the root of the atomic branch.
	})
	b.AnyAtomicType = anyAtomicHandle
	b.bind(xsQName("anyAtomicType"))

	b.ErrorType = arena.CreateSimpleTypeDefinition(SimpleTypeDefinition{
		Name: xsQName("error"), Base: anySimpleHandle, Variety: VarietyUnion,
	})
	b.bind(xsQName("error"))

	for _, p := range primitiveTable {
		h := arena.CreateSimpleTypeDefinition(SimpleTypeDefinition{
			Name:        xsQName(p.name),
			Base:        anyAtomicHandle,
			Variety:     VarietyAtomic,
			Fundamental: p.fundamental,
		})
		st := arena.GetSimpleTypeDefinition(h)
		st.Primitive = h // a primitive is its own {primitive type definition}
		ws := WhiteSpacePreserve
		fixed := false
		if p.name != "string" {
			ws = WhiteSpaceCollapse
			fixed = true
		}
		st.Facets = []Handle[ConstrainingFacet]{
			arena.CreateConstrainingFacet(ConstrainingFacet{Kind: FacetWhiteSpace, WhiteSpace: ws, Fixed: fixed}),
		}
		b.Primitives[p.name] = h
		b.bind(xsQName(p.name))
	}

	for _, d := range derivedTable {
		base, ok := b.resolveBuiltinSimple(d.base)
		if !ok {
			return nil, newError(ErrUnresolvedBuiltin, "derived built-in "+d.name+" names unknown base "+d.base)
		}
		var h Handle[SimpleTypeDefinition]
		if d.listItem != "" {
			item, ok := b.resolveBuiltinSimple(d.listItem)
			if !ok {
				return nil, newError(ErrUnresolvedBuiltin, "derived built-in "+d.name+" names unknown item type "+d.listItem)
			}
			h = arena.CreateSimpleTypeDefinition(SimpleTypeDefinition{
				Name: xsQName(d.name), Base: anySimpleHandle, Variety: VarietyList, ItemType: item,
			})
		} else {
			baseDef := arena.GetSimpleTypeDefinition(base)
			h = arena.CreateSimpleTypeDefinition(SimpleTypeDefinition{
				Name:      xsQName(d.name),
				Base:      base,
				Variety:   VarietyAtomic,
				Primitive: baseDef.Primitive,
			})
			st := arena.GetSimpleTypeDefinition(h)
			for _, f := range d.facets {
				st.Facets = append(st.Facets, arena.CreateConstrainingFacet(f))
			}
		}
		b.Derived[d.name] = h
		b.bind(xsQName(d.name))
	}

	b.XSIType = b.registerXSI(arena, "type")
	b.XSINil = b.registerXSI(arena, "nil")
	b.XSISchemaLocation = b.registerXSI(arena, "schemaLocation")
	b.XSINoNamespaceSchemaLocation = b.registerXSI(arena, "noNamespaceSchemaLocation")

	if err := b.registerAll(resolver); err != nil {
		return nil, err
	}
	resolver.SetBuiltinPredicate(func(q QName) bool { return b.names[q] })

	return b, nil
}

func (b *Builtins) bind(q QName) { b.names[q] = true }

func (b *Builtins) resolveBuiltinSimple(name string) (Handle[SimpleTypeDefinition], bool) {
	if h, ok := b.Primitives[name]; ok {
		return h, true
	}
	if h, ok := b.Derived[name]; ok {
		return h, true
	}
	switch name {
	case "anySimpleType":
		return b.AnySimpleType, true
	case "anyAtomicType":
		return b.AnyAtomicType, true
	}
	return Handle[SimpleTypeDefinition]{}, false
}

func (b *Builtins) registerXSI(arena *Arena, local string) Handle[AttributeDeclaration] {
	typeRef := b.AnySimpleType
	if local == "type" {
		// xsi:type's declared type is xs:QName; nil is boolean.
		if h, ok := b.Primitives["QName"]; ok {
			typeRef = h
		}
	}
	if local == "nil" {
		if h, ok := b.Primitives["boolean"]; ok {
			typeRef = h
		}
	}
	h := arena.CreateAttributeDeclaration(AttributeDeclaration{
		Name:           xsiQName(local),
		TypeDefinition: typeRef,
		Scope:          Scope{Variety: GlobalScope},
	})
	b.bind(xsiQName(local))
	return h
}

func (b *Builtins) registerAll(resolver *Resolver) error {
	if err := resolver.RegisterType(xsQName("anyType"), ComplexTypeRef(b.AnyType)); err != nil {
		return err
	}
	if err := resolver.RegisterType(xsQName("anySimpleType"), SimpleTypeRef(b.AnySimpleType)); err != nil {
		return err
	}
	if err := resolver.RegisterType(xsQName("anyAtomicType"), SimpleTypeRef(b.AnyAtomicType)); err != nil {
		return err
	}
	if err := resolver.RegisterType(xsQName("error"), SimpleTypeRef(b.ErrorType)); err != nil {
		return err
	}
	for name, h := range b.Primitives {
		if err := resolver.RegisterType(xsQName(name), SimpleTypeRef(h)); err != nil {
			return err
		}
	}
	for name, h := range b.Derived {
		if err := resolver.RegisterType(xsQName(name), SimpleTypeRef(h)); err != nil {
			return err
		}
	}
	for _, local := range []string{"type", "nil", "schemaLocation", "noNamespaceSchemaLocation"} {
		var h Handle[AttributeDeclaration]
		switch local {
		case "type":
			h = b.XSIType
		case "nil":
			h = b.XSINil
		case "schemaLocation":
			h = b.XSISchemaLocation
		case "noNamespaceSchemaLocation":
			h = b.XSINoNamespaceSchemaLocation
		}
		if err := resolver.RegisterAttribute(xsiQName(local), h); err != nil {
			return err
		}
	}
	return nil
}

// ---- static tables ------------------------------------------------------

type primitiveSpec struct {
	name        string
	fundamental FundamentalFacets
}

// primitiveTable is the 19 primitives of spec.md §4.3, Table F.1 collapsed
// to the four columns the validator actually consults.
var primitiveTable = []primitiveSpec{
	{"string", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"boolean", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityFinite, Numeric: false}},
	{"float", FundamentalFacets{Ordered: OrderedTotal, Bounded: true, Cardinality: CardinalityFinite, Numeric: true}},
	{"double", FundamentalFacets{Ordered: OrderedTotal, Bounded: true, Cardinality: CardinalityFinite, Numeric: true}},
	{"decimal", FundamentalFacets{Ordered: OrderedTotal, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: true}},
	{"dateTime", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"duration", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"time", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"date", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"gMonth", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"gMonthDay", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"gDay", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"gYear", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"gYearMonth", FundamentalFacets{Ordered: OrderedPartial, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"hexBinary", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"base64Binary", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"anyURI", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"QName", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
	{"NOTATION", FundamentalFacets{Ordered: OrderedFalse, Bounded: false, Cardinality: CardinalityCountablyInfinite, Numeric: false}},
}

type derivedSpec struct {
	name     string
	base     string // an entry in primitiveTable or an earlier derivedSpec
	listItem string // non-empty marks this entry as list-variety instead of restriction
	facets   []ConstrainingFacet
}

// derivedTable is the 28 ordinary derived simple types, in base-before-
// derived order so resolveBuiltinSimple always finds a prior entry.
var derivedTable = []derivedSpec{
	{name: "normalizedString", base: "string", facets: []ConstrainingFacet{{Kind: FacetWhiteSpace, WhiteSpace: WhiteSpaceReplace}}},
	{name: "token", base: "normalizedString", facets: []ConstrainingFacet{{Kind: FacetWhiteSpace, WhiteSpace: WhiteSpaceCollapse}}},
	{name: "language", base: "token", facets: []ConstrainingFacet{{Kind: FacetPattern, Pattern: `[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*`}}},
	{name: "NMTOKEN", base: "token", facets: []ConstrainingFacet{{Kind: FacetPattern, Pattern: `\c+`}}},
	{name: "NMTOKENS", listItem: "NMTOKEN"},
	{name: "Name", base: "token", facets: []ConstrainingFacet{{Kind: FacetPattern, Pattern: `\i\c*`}}},
	{name: "NCName", base: "Name", facets: []ConstrainingFacet{{Kind: FacetPattern, Pattern: `[\i-[:]][\c-[:]]*`}}},
	{name: "ID", base: "NCName"},
	{name: "IDREF", base: "NCName"},
	{name: "IDREFS", listItem: "IDREF"},
	{name: "ENTITY", base: "NCName"},
	{name: "ENTITIES", listItem: "ENTITY"},
	{name: "integer", base: "decimal", facets: []ConstrainingFacet{{Kind: FacetFractionDigits, Value: "0", Fixed: true}, {Kind: FacetPattern, Pattern: `[\-+]?[0-9]+`}}},
	{name: "nonPositiveInteger", base: "integer", facets: []ConstrainingFacet{{Kind: FacetMaxInclusive, Value: "0"}}},
	{name: "negativeInteger", base: "nonPositiveInteger", facets: []ConstrainingFacet{{Kind: FacetMaxInclusive, Value: "-1"}}},
	{name: "long", base: "integer", facets: []ConstrainingFacet{{Kind: FacetMinInclusive, Value: "-9223372036854775808"}, {Kind: FacetMaxInclusive, Value: "9223372036854775807"}}},
	{name: "int", base: "long", facets: []ConstrainingFacet{{Kind: FacetMinInclusive, Value: "-2147483648"}, {Kind: FacetMaxInclusive, Value: "2147483647"}}},
	{name: "short", base: "int", facets: []ConstrainingFacet{{Kind: FacetMinInclusive, Value: "-32768"}, {Kind: FacetMaxInclusive, Value: "32767"}}},
	{name: "byte", base: "short", facets: []ConstrainingFacet{{Kind: FacetMinInclusive, Value: "-128"}, {Kind: FacetMaxInclusive, Value: "127"}}},
	{name: "nonNegativeInteger", base: "integer", facets: []ConstrainingFacet{{Kind: FacetMinInclusive, Value: "0"}}},
	{name: "unsignedLong", base: "nonNegativeInteger", facets: []ConstrainingFacet{{Kind: FacetMaxInclusive, Value: "18446744073709551615"}}},
	{name: "unsignedInt", base: "unsignedLong", facets: []ConstrainingFacet{{Kind: FacetMaxInclusive, Value: "4294967295"}}},
	{name: "unsignedShort", base: "unsignedInt", facets: []ConstrainingFacet{{Kind: FacetMaxInclusive, Value: "65535"}}},
	{name: "unsignedByte", base: "unsignedShort", facets: []ConstrainingFacet{{Kind: FacetMaxInclusive, Value: "255"}}},
	{name: "positiveInteger", base: "nonNegativeInteger", facets: []ConstrainingFacet{{Kind: FacetMinInclusive, Value: "1"}}},
	{name: "yearMonthDuration", base: "duration", facets: []ConstrainingFacet{{Kind: FacetPattern, Pattern: `[\-+]?P[0-9]+(Y([0-9]+M)?|M)`}}},
	{name: "dayTimeDuration", base: "duration", facets: []ConstrainingFacet{{Kind: FacetPattern, Pattern: `[\-+]?P([0-9]+D)?(T([0-9]+H)?([0-9]+M)?([0-9]+(\.[0-9]+)?S)?)?`}}},
	{name: "dateTimeStamp", base: "dateTime", facets: []ConstrainingFacet{{Kind: FacetExplicitTimezone, Timezone: TimezoneRequired}}},
}
