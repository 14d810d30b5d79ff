package xsd

func (m *mapCtx) mapTopLevelComplexType(entry *pendingEntry) error {
	h := typedHandle[ComplexTypeDefinition](entry.dyn)
	ct, err := m.mapComplexTypeBody(entry.n, entry.n.attrOr("name", ""))
	if err != nil {
		return err
	}
	m.arena().InsertComplexTypeDefinition(h, ct)
	return nil
}

func (m *mapCtx) mapAnonymousComplexType(n node) (Handle[ComplexTypeDefinition], error) {
	ct, err := m.mapComplexTypeBody(n, "")
	if err != nil {
		return Handle[ComplexTypeDefinition]{}, err
	}
	return m.arena().CreateComplexTypeDefinition(ct), nil
}

// mapComplexTypeBody implements §4.4's complex-type mapping: the three
// content shapes (simpleContent/complexContent/implicit) and steps 1-4 of
// the six-step ContentType derivation. Open content (steps 5-6) is not
// mapped, and the derivation method does not change the content type: an
// extension's content is its own explicit particle only.
func (m *mapCtx) mapComplexTypeBody(n node, localName string) (ComplexTypeDefinition, error) {
	ct := ComplexTypeDefinition{
		Abstract:   n.boolAttr("abstract"),
		Annotation: m.mapAnnotation(n),
	}
	if localName != "" {
		ct.Name = QName{Namespace: m.ns().targetNamespace, Local: localName}
	}
	ct.Final = parseDerivationBlock(n.attrOr("final", ""), hasAttr(n, "final"), DerivationBlock{}, false)
	ct.Prohibited = parseDerivationBlock(n.attrOr("block", ""), hasAttr(n, "block"), DerivationBlock{}, false)

	if sc, ok := n.firstChildNamed("simpleContent"); ok {
		return m.mapSimpleContent(ct, sc)
	}
	if cc, ok := n.firstChildNamed("complexContent"); ok {
		return m.mapComplexContent(ct, cc, n.boolAttr("mixed"))
	}
	return m.mapImplicitContent(ct, n)
}

// mapSimpleContent handles <simpleContent><restriction|extension base=.../>.
func (m *mapCtx) mapSimpleContent(ct ComplexTypeDefinition, sc node) (ComplexTypeDefinition, error) {
	var body node
	var method DerivationMethod
	if r, ok := sc.firstChildNamed("restriction"); ok {
		body, method = r, DerivationRestriction
	} else if e, ok := sc.firstChildNamed("extension"); ok {
		body, method = e, DerivationExtension
	} else {
		return ct, newError(ErrUnsupportedFeature, "<simpleContent> missing restriction/extension")
	}
	ct.DerivationMethod = method

	base, ok := body.qnameAttr("base")
	if !ok {
		return ct, unresolvedReference(QName{})
	}
	baseRef, err := m.resolveTypeRef(base)
	if err != nil {
		return ct, err
	}
	ct.BaseType = baseRef

	var simpleType Handle[SimpleTypeDefinition]
	if inline, ok := body.firstChildNamed("simpleType"); ok {
		h, err := m.mapAnonymousSimpleType(inline)
		if err != nil {
			return ct, err
		}
		simpleType = h
	} else if baseRef.IsSimple() {
		simpleType = baseRef.Simple
	} else if baseRef.IsComplex() {
		baseCT := m.arena().GetComplexTypeDefinition(baseRef.Complex)
		if baseCT.Content.Variety == ContentSimple {
			simpleType = baseCT.Content.SimpleType
		}
	}
	ct.Content = ContentType{Variety: ContentSimple, SimpleType: simpleType}

	uses, wildcard, err := m.mapAttributeUsesAndWildcard(body, baseRef)
	if err != nil {
		return ct, err
	}
	ct.AttributeUses = uses
	ct.AttributeWildcard = wildcard
	return ct, nil
}

// mapComplexContent handles <complexContent><restriction|extension base=.../>.
func (m *mapCtx) mapComplexContent(ct ComplexTypeDefinition, cc node, typeMixed bool) (ComplexTypeDefinition, error) {
	// Step 1: <complexContent mixed> when present, else the <complexType>'s.
	effectiveMixed := typeMixed
	if v, ok := cc.attr("mixed"); ok {
		effectiveMixed = v == "true"
	}

	var body node
	var method DerivationMethod
	if r, ok := cc.firstChildNamed("restriction"); ok {
		body, method = r, DerivationRestriction
	} else if e, ok := cc.firstChildNamed("extension"); ok {
		body, method = e, DerivationExtension
	} else {
		return ct, newError(ErrUnsupportedFeature, "<complexContent> missing restriction/extension")
	}
	ct.DerivationMethod = method

	base, ok := body.qnameAttr("base")
	if !ok {
		return ct, unresolvedReference(QName{})
	}
	baseRef, err := m.resolveTypeRef(base)
	if err != nil {
		return ct, err
	}
	ct.BaseType = baseRef

	explicitParticle, err := m.explicitContentParticle(body)
	if err != nil {
		return ct, err
	}
	ct.Content = m.deriveContentType(effectiveMixed, explicitParticle)

	uses, wildcard, err := m.mapAttributeUsesAndWildcard(body, baseRef)
	if err != nil {
		return ct, err
	}
	ct.AttributeUses = uses
	ct.AttributeWildcard = wildcard

	for _, a := range body.childrenNamed("assert") {
		ct.Assertions = append(ct.Assertions, m.arena().CreateAssertion(Assertion{
			Test: m.mapXPath(a, "test"), Annotation: m.mapAnnotation(a),
		}))
	}
	return ct, nil
}

// mapImplicitContent handles the "neither simpleContent nor complexContent"
// shape: base is xs:anyType, method restriction (§4.4).
func (m *mapCtx) mapImplicitContent(ct ComplexTypeDefinition, n node) (ComplexTypeDefinition, error) {
	ct.BaseType = m.anyTypeRef()
	ct.DerivationMethod = DerivationRestriction

	explicitParticle, err := m.explicitContentParticle(n)
	if err != nil {
		return ct, err
	}
	ct.Content = m.deriveContentType(n.boolAttr("mixed"), explicitParticle)

	uses, wildcard, err := m.mapAttributeUsesAndWildcard(n, TypeRef{})
	if err != nil {
		return ct, err
	}
	ct.AttributeUses = uses
	ct.AttributeWildcard = wildcard
	return ct, nil
}

// explicitContentParticle implements step 2 of the six-step procedure: the
// single <all|choice|sequence|group> child, or the zero handle if it is
// trivially empty.
func (m *mapCtx) explicitContentParticle(n node) (Handle[Particle], error) {
	for _, c := range n.children() {
		switch c.localName() {
		case "all", "choice", "sequence", "group":
			ph, err := m.mapParticle(c)
			if err != nil || ph.IsZero() {
				return Handle[Particle]{}, err
			}
			// Trivially empty: an <all>/<sequence> with no particles, or a
			// <choice> with no particles and minOccurs="0".
			if p := m.arena().GetParticle(ph); p.TermKind == TermModelGroup && c.localName() != "group" {
				g := m.arena().GetModelGroup(p.Group)
				if len(g.Particles) == 0 && (g.Compositor != CompositorChoice || p.Min == 0) {
					return Handle[Particle]{}, nil
				}
			}
			return ph, nil
		}
	}
	return Handle[Particle]{}, nil
}

// deriveContentType implements steps 3-4 of the six-step procedure. Steps
// 5-6 (open content) are not implemented: OpenContent is never set.
func (m *mapCtx) deriveContentType(effectiveMixed bool, explicit Handle[Particle]) ContentType {
	if !explicit.IsZero() {
		variety := ContentElementOnly
		if effectiveMixed {
			variety = ContentMixed
		}
		return ContentType{Variety: variety, Particle: explicit}
	}
	if effectiveMixed {
		emptySeq := m.arena().CreateParticle(Particle{
			Min: 1, Max: boundedMax(1), TermKind: TermModelGroup,
			Group: m.arena().CreateModelGroup(ModelGroup{Compositor: CompositorSequence}),
		})
		return ContentType{Variety: ContentMixed, Particle: emptySeq}
	}
	return ContentType{Variety: ContentEmpty}
}

// mapAttributeUsesAndWildcard computes the union of direct <attribute>
// children, <attributeGroup ref> expansions, and (for extension/restriction)
// inherited uses from the base type, applying the restriction-prohibit rule
// (an attribute use with use="prohibited" replaces any inherited use of that
// name and is kept with Prohibited set, so the validator rejects the
// attribute when present).
func (m *mapCtx) mapAttributeUsesAndWildcard(n node, base TypeRef) ([]Handle[AttributeUse], Handle[Wildcard], error) {
	byName := map[QName]Handle[AttributeUse]{}
	var order []QName

	if base.IsComplex() {
		baseCT := m.arena().GetComplexTypeDefinition(base.Complex)
		for _, uh := range baseCT.AttributeUses {
			u := m.arena().GetAttributeUse(uh)
			decl := m.arena().GetAttributeDeclaration(u.Declaration)
			if _, seen := byName[decl.Name]; !seen {
				order = append(order, decl.Name)
			}
			byName[decl.Name] = uh
		}
	}

	var wildcard Handle[Wildcard]
	for _, c := range n.children() {
		switch c.localName() {
		case "attribute":
			uh, err := m.mapAttributeUse(c)
			if err != nil {
				return nil, Handle[Wildcard]{}, err
			}
			u := m.arena().GetAttributeUse(uh)
			decl := m.arena().GetAttributeDeclaration(u.Declaration)
			if _, seen := byName[decl.Name]; !seen {
				order = append(order, decl.Name)
			}
			byName[decl.Name] = uh
		case "attributeGroup":
			ref, ok := c.qnameAttr("ref")
			if !ok {
				continue
			}
			gh, err := m.resolveAttributeGroupRef(ref)
			if err != nil {
				return nil, Handle[Wildcard]{}, err
			}
			g := m.arena().GetAttributeGroupDefinition(gh)
			for _, uh := range g.Uses {
				u := m.arena().GetAttributeUse(uh)
				decl := m.arena().GetAttributeDeclaration(u.Declaration)
				if _, seen := byName[decl.Name]; !seen {
					order = append(order, decl.Name)
				}
				byName[decl.Name] = uh
			}
			if !g.Wildcard.IsZero() {
				wildcard = g.Wildcard
			}
		case "anyAttribute":
			wh, err := m.mapWildcard(c)
			if err != nil {
				return nil, Handle[Wildcard]{}, err
			}
			wildcard = wh
		}
	}

	var out []Handle[AttributeUse]
	for _, nm := range order {
		out = append(out, byName[nm])
	}
	return out, wildcard, nil
}
