package xsd

// mapTopLevelElement maps the XML node stashed in entry into the already-
// reserved top-level ElementDeclaration handle. The unused first parameter
// mirrors the per-kind dispatch shape in driver.materialize; the real
// handle lives in entry.dyn.
func (m *mapCtx) mapTopLevelElement(_ Handle[ElementDeclaration], entry *pendingEntry) error {
	h := typedHandle[ElementDeclaration](entry.dyn)
	decl, err := m.mapElementDecl(entry.n, GlobalScope, DynamicHandle{})
	if err != nil {
		return err
	}
	m.arena().InsertElementDeclaration(h, decl)
	return nil
}

// mapElementDecl implements the element-declaration mapping procedure of
// §4.4, shared between top-level elements and local (particle-nested) ones.
// scopeParent is the DynamicHandle recorded for local declarations (§9 open
// question: for elements nested directly in a named <group>, the group
// definition's own handle is used — see mapTopLevelGroup).
func (m *mapCtx) mapElementDecl(n node, variety ScopeVariety, scopeParent DynamicHandle) (ElementDeclaration, error) {
	formDefault := m.ns().elementFormDefault
	var name QName
	var ok bool
	if variety == GlobalScope {
		name, ok = n.declaredName()
	} else {
		name, ok = n.localElementName(formDefault)
	}
	if !ok {
		return ElementDeclaration{}, newError(ErrUnnamedTopLevelElement, "<element> missing name")
	}

	decl := ElementDeclaration{
		Name:     name,
		Nillable: n.boolAttr("nillable"),
		Abstract: n.boolAttr("abstract"),
		Scope:    Scope{Variety: variety, Parent: scopeParent},
	}
	decl.ValueConstraint = m.valueConstraint(n)
	decl.Disallowed = parseDerivationBlock(n.attrOr("block", ""), hasAttr(n, "block"), DerivationBlock{}, true)
	decl.SubstitutionGroupExclusions = parseDerivationBlock(n.attrOr("final", ""), hasAttr(n, "final"), DerivationBlock{}, false)
	decl.Annotation = m.mapAnnotation(n)

	// Type definition: first applicable of inline simpleType/complexType,
	// `type` attribute, first substitutionGroup affiliation's type, or
	// xs:anyType.
	typeAssigned := false
	if st, ok := n.firstChildNamed("simpleType"); ok {
		h, err := m.mapAnonymousSimpleType(st)
		if err != nil {
			return ElementDeclaration{}, err
		}
		decl.TypeDefinition = SimpleTypeRef(h)
		typeAssigned = true
	} else if ct, ok := n.firstChildNamed("complexType"); ok {
		h, err := m.mapAnonymousComplexType(ct)
		if err != nil {
			return ElementDeclaration{}, err
		}
		decl.TypeDefinition = ComplexTypeRef(h)
		typeAssigned = true
	} else if tv, ok := n.qnameAttr("type"); ok {
		ref, err := m.resolveTypeRef(tv)
		if err != nil {
			return ElementDeclaration{}, err
		}
		decl.TypeDefinition = ref
		typeAssigned = true
	}

	if sg, ok := n.qnameAttr("substitutionGroup"); ok {
		affHandle, err := m.resolveElementRef(sg)
		if err != nil {
			return ElementDeclaration{}, err
		}
		decl.SubstitutionGroupAffiliations = []Handle[ElementDeclaration]{affHandle}
		if !typeAssigned {
			aff := m.arena().GetElementDeclaration(affHandle)
			decl.TypeDefinition = aff.TypeDefinition
			typeAssigned = true
		}
	}
	if !typeAssigned {
		decl.TypeDefinition = m.anyTypeRef()
	}

	for _, alt := range n.childrenNamed("alternative") {
		h, err := m.mapTypeAlternative(alt)
		if err != nil {
			return ElementDeclaration{}, err
		}
		decl.TypeTable = append(decl.TypeTable, h)
	}

	for _, kind := range []struct {
		local    string
		category IdentityConstraintCategory
	}{{"key", ICKey}, {"unique", ICUnique}, {"keyref", ICKeyRef}} {
		for _, icn := range n.childrenNamed(kind.local) {
			h, err := m.mapIdentityConstraint(icn, kind.category)
			if err != nil {
				return ElementDeclaration{}, err
			}
			decl.IdentityConstraints = append(decl.IdentityConstraints, h)
		}
	}

	return decl, nil
}

func hasAttr(n node, name string) bool {
	_, ok := n.attr(name)
	return ok
}

func (m *mapCtx) mapTypeAlternative(n node) (Handle[TypeAlternative], error) {
	var test *XPathExpression
	if hasAttr(n, "test") {
		x := m.mapXPath(n, "test")
		test = &x
	}
	var ref TypeRef
	var err error
	if st, ok := n.firstChildNamed("simpleType"); ok {
		h, e := m.mapAnonymousSimpleType(st)
		err = e
		ref = SimpleTypeRef(h)
	} else if ct, ok := n.firstChildNamed("complexType"); ok {
		h, e := m.mapAnonymousComplexType(ct)
		err = e
		ref = ComplexTypeRef(h)
	} else if tv, ok := n.qnameAttr("type"); ok {
		ref, err = m.resolveTypeRef(tv)
	}
	if err != nil {
		return Handle[TypeAlternative]{}, err
	}
	return m.arena().CreateTypeAlternative(TypeAlternative{
		Test: test, TypeRef: ref, Annotation: m.mapAnnotation(n),
	}), nil
}

// mapTopLevelAttribute mirrors mapTopLevelElement for top-level <attribute>.
func (m *mapCtx) mapTopLevelAttribute(entry *pendingEntry) error {
	h := typedHandle[AttributeDeclaration](entry.dyn)
	decl, err := m.mapAttributeDecl(entry.n, GlobalScope, DynamicHandle{})
	if err != nil {
		return err
	}
	m.arena().InsertAttributeDeclaration(h, decl)
	return nil
}

func (m *mapCtx) mapAttributeDecl(n node, variety ScopeVariety, scopeParent DynamicHandle) (AttributeDeclaration, error) {
	formDefault := m.ns().attributeFormDefault
	var name QName
	var ok bool
	if variety == GlobalScope {
		name, ok = n.declaredName()
	} else {
		name, ok = n.localElementName(formDefault)
	}
	if !ok {
		return AttributeDeclaration{}, newError(ErrUnnamedTopLevelElement, "<attribute> missing name")
	}

	decl := AttributeDeclaration{
		Name:        name,
		Scope:       Scope{Variety: variety, Parent: scopeParent},
		Inheritable: n.boolAttr("inheritable"),
		Annotation:  m.mapAnnotation(n),
	}
	decl.ValueConstraint = m.valueConstraint(n)

	if st, ok := n.firstChildNamed("simpleType"); ok {
		h, err := m.mapAnonymousSimpleType(st)
		if err != nil {
			return AttributeDeclaration{}, err
		}
		decl.TypeDefinition = h
	} else if tv, ok := n.qnameAttr("type"); ok {
		ref, err := m.resolveTypeRef(tv)
		if err != nil {
			return AttributeDeclaration{}, err
		}
		if ref.IsSimple() {
			decl.TypeDefinition = ref.Simple
		} else {
			decl.TypeDefinition = m.anySimpleTypeRef()
		}
	} else {
		decl.TypeDefinition = m.anySimpleTypeRef()
	}
	return decl, nil
}

// mapAttributeUse maps a local <attribute> particle (direct child of a
// complex-type/attribute-group content model) into an AttributeUse, which
// may reference a global declaration (`ref`) or carry an inline one.
func (m *mapCtx) mapAttributeUse(n node) (Handle[AttributeUse], error) {
	useAttr := n.attrOr("use", "optional")
	use := AttributeUse{
		Required:   useAttr == "required",
		Prohibited: useAttr == "prohibited",
		Annotation: m.mapAnnotation(n),
	}
	use.ValueConstraint = m.valueConstraint(n)
	use.Inheritable = n.boolAttr("inheritable")

	if ref, ok := n.qnameAttr("ref"); ok {
		h, err := m.resolveAttributeRef(ref)
		if err != nil {
			return Handle[AttributeUse]{}, err
		}
		use.Declaration = h
	} else {
		decl, err := m.mapAttributeDecl(n, LocalScope, DynamicHandle{})
		if err != nil {
			return Handle[AttributeUse]{}, err
		}
		use.Declaration = m.arena().CreateAttributeDeclaration(decl)
	}
	return m.arena().CreateAttributeUse(use), nil
}

// typedHandle recovers a typed Handle[T] from a DynamicHandle; safe because
// the driver only ever constructs entry.dyn from the matching Reserve*
// call for T.
func typedHandle[T any](d DynamicHandle) Handle[T] {
	return Handle[T]{index: d.Index}
}
