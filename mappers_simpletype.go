package xsd

func (m *mapCtx) mapTopLevelSimpleType(entry *pendingEntry) error {
	h := typedHandle[SimpleTypeDefinition](entry.dyn)
	st, err := m.mapSimpleTypeBody(entry.n, entry.n.attrOr("name", ""))
	if err != nil {
		return err
	}
	m.arena().InsertSimpleTypeDefinition(h, st)
	return nil
}

func (m *mapCtx) mapAnonymousSimpleType(n node) (Handle[SimpleTypeDefinition], error) {
	st, err := m.mapSimpleTypeBody(n, "")
	if err != nil {
		return Handle[SimpleTypeDefinition]{}, err
	}
	return m.arena().CreateSimpleTypeDefinition(st), nil
}

// mapSimpleTypeBody implements §4.4's simple-type mapping: variety inferred
// from which of <restriction>/<list>/<union> is present.
func (m *mapCtx) mapSimpleTypeBody(n node, localName string) (SimpleTypeDefinition, error) {
	st := SimpleTypeDefinition{Annotation: m.mapAnnotation(n)}
	if localName != "" {
		st.Name = QName{Namespace: m.ns().targetNamespace, Local: localName}
	}
	st.Final = parseDerivationBlock(n.attrOr("final", ""), hasAttr(n, "final"), DerivationBlock{}, false)

	if r, ok := n.firstChildNamed("restriction"); ok {
		return m.mapSimpleRestriction(st, r)
	}
	if l, ok := n.firstChildNamed("list"); ok {
		return m.mapSimpleList(st, l)
	}
	if u, ok := n.firstChildNamed("union"); ok {
		return m.mapSimpleUnion(st, u)
	}
	return st, newError(ErrUnsupportedFeature, "simpleType with no restriction/list/union")
}

func (m *mapCtx) mapSimpleRestriction(st SimpleTypeDefinition, r node) (SimpleTypeDefinition, error) {
	st.Variety = VarietyAtomic

	var base Handle[SimpleTypeDefinition]
	if inline, ok := r.firstChildNamed("simpleType"); ok {
		h, err := m.mapAnonymousSimpleType(inline)
		if err != nil {
			return st, err
		}
		base = h
	} else if bv, ok := r.qnameAttr("base"); ok {
		ref, err := m.resolveTypeRef(bv)
		if err != nil {
			return st, err
		}
		if !ref.IsSimple() {
			return st, newError(ErrUnsupportedFeature, "simpleType restriction base must be a simple type")
		}
		base = ref.Simple
	} else {
		base = m.anySimpleTypeRef()
	}
	st.Base = base
	if baseDef := m.arena().GetSimpleTypeDefinition(base); baseDef != nil {
		st.Variety = baseDef.Variety
		st.Primitive = baseDef.Primitive
		st.ItemType = baseDef.ItemType
		st.MemberTypes = baseDef.MemberTypes
	}

	facets, err := m.mapFacets(r)
	if err != nil {
		return st, err
	}
	st.Facets = facets
	return st, nil
}

func (m *mapCtx) mapSimpleList(st SimpleTypeDefinition, l node) (SimpleTypeDefinition, error) {
	st.Variety = VarietyList
	st.Base = m.anySimpleTypeRef()

	if inline, ok := l.firstChildNamed("simpleType"); ok {
		h, err := m.mapAnonymousSimpleType(inline)
		if err != nil {
			return st, err
		}
		st.ItemType = h
		return st, nil
	}
	if iv, ok := l.qnameAttr("itemType"); ok {
		ref, err := m.resolveTypeRef(iv)
		if err != nil {
			return st, err
		}
		if !ref.IsSimple() {
			return st, newError(ErrUnsupportedFeature, "list itemType must be a simple type")
		}
		st.ItemType = ref.Simple
		return st, nil
	}
	return st, newError(ErrUnresolvedReference, "<list> missing itemType and inline simpleType")
}

func (m *mapCtx) mapSimpleUnion(st SimpleTypeDefinition, u node) (SimpleTypeDefinition, error) {
	st.Variety = VarietyUnion
	st.Base = m.anySimpleTypeRef()

	for _, inline := range u.childrenNamed("simpleType") {
		h, err := m.mapAnonymousSimpleType(inline)
		if err != nil {
			return st, err
		}
		st.MemberTypes = append(st.MemberTypes, h)
	}
	for _, qn := range u.qnameListAttr("memberTypes") {
		ref, err := m.resolveTypeRef(qn)
		if err != nil {
			return st, err
		}
		if !ref.IsSimple() {
			return st, newError(ErrUnsupportedFeature, "union memberTypes must be simple types")
		}
		st.MemberTypes = append(st.MemberTypes, ref.Simple)
	}
	return st, nil
}

// mapFacets implements the §4.4 facet-mapping table: pattern and
// enumeration collapse their repeatable occurrences into one facet each;
// every other kind is singular.
func (m *mapCtx) mapFacets(r node) ([]Handle[ConstrainingFacet], error) {
	var out []Handle[ConstrainingFacet]

	if patterns := r.childrenNamed("pattern"); len(patterns) > 0 {
		var parts []string
		var ann Handle[Annotation]
		for _, p := range patterns {
			parts = append(parts, p.attrOr("value", ""))
			if ann.IsZero() {
				ann = m.mapAnnotation(p)
			}
		}
		out = append(out, m.arena().CreateConstrainingFacet(ConstrainingFacet{
			Kind: FacetPattern, Pattern: joinPattern(parts), Annotation: ann,
		}))
	}
	if enums := r.childrenNamed("enumeration"); len(enums) > 0 {
		var values []string
		var ann Handle[Annotation]
		for _, e := range enums {
			values = append(values, e.attrOr("value", ""))
			if ann.IsZero() {
				ann = m.mapAnnotation(e)
			}
		}
		out = append(out, m.arena().CreateConstrainingFacet(ConstrainingFacet{
			Kind: FacetEnumeration, Values: values, Annotation: ann,
		}))
	}
	if asserts := r.childrenNamed("assertion"); len(asserts) > 0 {
		var handles []Handle[Assertion]
		for _, a := range asserts {
			handles = append(handles, m.arena().CreateAssertion(Assertion{
				Test: m.mapXPath(a, "test"), Annotation: m.mapAnnotation(a),
			}))
		}
		out = append(out, m.arena().CreateConstrainingFacet(ConstrainingFacet{
			Kind: FacetAssertions, Assertions: handles,
		}))
	}

	singular := []struct {
		local string
		kind  FacetKind
	}{
		{"length", FacetLength}, {"minLength", FacetMinLength}, {"maxLength", FacetMaxLength},
		{"maxInclusive", FacetMaxInclusive}, {"maxExclusive", FacetMaxExclusive},
		{"minInclusive", FacetMinInclusive}, {"minExclusive", FacetMinExclusive},
		{"totalDigits", FacetTotalDigits}, {"fractionDigits", FacetFractionDigits},
	}
	for _, s := range singular {
		if n, ok := r.firstChildNamed(s.local); ok {
			out = append(out, m.arena().CreateConstrainingFacet(ConstrainingFacet{
				Kind: s.kind, Value: n.attrOr("value", ""), Fixed: n.boolAttr("fixed"), Annotation: m.mapAnnotation(n),
			}))
		}
	}
	if n, ok := r.firstChildNamed("whiteSpace"); ok {
		var ws WhiteSpaceValue
		switch n.attrOr("value", "preserve") {
		case "replace":
			ws = WhiteSpaceReplace
		case "collapse":
			ws = WhiteSpaceCollapse
		default:
			ws = WhiteSpacePreserve
		}
		out = append(out, m.arena().CreateConstrainingFacet(ConstrainingFacet{
			Kind: FacetWhiteSpace, WhiteSpace: ws, Fixed: n.boolAttr("fixed"), Annotation: m.mapAnnotation(n),
		}))
	}
	if n, ok := r.firstChildNamed("explicitTimezone"); ok {
		var tz ExplicitTimezoneValue
		switch n.attrOr("value", "optional") {
		case "required":
			tz = TimezoneRequired
		case "prohibited":
			tz = TimezoneProhibited
		default:
			tz = TimezoneOptional
		}
		out = append(out, m.arena().CreateConstrainingFacet(ConstrainingFacet{
			Kind: FacetExplicitTimezone, Timezone: tz, Fixed: n.boolAttr("fixed"), Annotation: m.mapAnnotation(n),
		}))
	}

	return out, nil
}

func joinPattern(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}
