package xsd

// mapTopLevelGroup maps a top-level <group name="..."> into the already
// reserved ModelGroupDefinition handle. Its single child is the
// all/choice/sequence compositor.
func (m *mapCtx) mapTopLevelGroup(entry *pendingEntry) error {
	h := typedHandle[ModelGroupDefinition](entry.dyn)
	n := entry.n
	name, _ := n.declaredName()

	def := ModelGroupDefinition{Name: name, Annotation: m.mapAnnotation(n)}

	// §9 open question: local element declarations nested directly inside
	// this named group record the group definition itself as Scope.Parent,
	// not left unset — see DESIGN.md for the rationale.
	scopeParent := Dynamic(KindModelGroupDefinition, h)

	var compositorNode node
	var found bool
	for _, c := range n.children() {
		switch c.localName() {
		case "all", "choice", "sequence":
			compositorNode, found = c, true
		}
	}
	if !found {
		return newError(ErrUnsupportedFeature, "<group> missing all/choice/sequence child")
	}

	mg, err := m.mapModelGroupBody(compositorNode, scopeParent)
	if err != nil {
		return err
	}
	def.ModelGroup = m.arena().CreateModelGroup(mg)
	m.arena().InsertModelGroupDefinition(h, def)
	return nil
}

// mapModelGroupBody maps a compositor's children directly into a ModelGroup
// value (rather than through mapParticle/mapModelGroupParticle) since a
// named group definition's model group carries no occurrence range of its
// own — that lives on whichever particle later references the group.
func (m *mapCtx) mapModelGroupBody(n node, scopeParent DynamicHandle) (ModelGroup, error) {
	if n.localName() == "all" {
		return ModelGroup{}, newError(ErrUnsupportedFeature, "xs:all content model is unsupported (v1)")
	}
	compositor := CompositorSequence
	if n.localName() == "choice" {
		compositor = CompositorChoice
	}
	var particles []Handle[Particle]
	for _, c := range n.children() {
		switch c.localName() {
		case "element":
			ph, err := m.mapElementParticleWithScope(c, scopeParent)
			if err != nil {
				return ModelGroup{}, err
			}
			if !ph.IsZero() {
				particles = append(particles, ph)
			}
		case "sequence", "choice", "all", "group", "any":
			ph, err := m.mapParticle(c)
			if err != nil {
				return ModelGroup{}, err
			}
			if !ph.IsZero() {
				particles = append(particles, ph)
			}
		}
	}
	return ModelGroup{Compositor: compositor, Particles: particles}, nil
}

func (m *mapCtx) mapElementParticleWithScope(n node, scopeParent DynamicHandle) (Handle[Particle], error) {
	min := n.minOccurs()
	max := n.maxOccurs()
	if min == 0 && !max.Unbounded && max.Value == 0 {
		return Handle[Particle]{}, nil
	}
	var eh Handle[ElementDeclaration]
	if ref, ok := n.qnameAttr("ref"); ok {
		h, err := m.resolveElementRef(ref)
		if err != nil {
			return Handle[Particle]{}, err
		}
		eh = h
	} else {
		decl, err := m.mapElementDecl(n, LocalScope, scopeParent)
		if err != nil {
			return Handle[Particle]{}, err
		}
		eh = m.arena().CreateElementDeclaration(decl)
	}
	return m.arena().CreateParticle(Particle{Min: min, Max: max, TermKind: TermElement, Element: eh}), nil
}

func (m *mapCtx) mapTopLevelAttributeGroup(entry *pendingEntry) error {
	h := typedHandle[AttributeGroupDefinition](entry.dyn)
	n := entry.n
	name, _ := n.declaredName()

	uses, wildcard, err := m.mapAttributeUsesAndWildcard(n, TypeRef{})
	if err != nil {
		return err
	}
	m.arena().InsertAttributeGroupDefinition(h, AttributeGroupDefinition{
		Name: name, Uses: uses, Wildcard: wildcard, Annotation: m.mapAnnotation(n),
	})
	return nil
}

func (m *mapCtx) mapNotation(entry *pendingEntry) error {
	h := typedHandle[NotationDeclaration](entry.dyn)
	n := entry.n
	name, _ := n.declaredName()
	m.arena().InsertNotationDeclaration(h, NotationDeclaration{
		Name:       name,
		SystemID:   n.attrOr("system", ""),
		PublicID:   n.attrOr("public", ""),
		Annotation: m.mapAnnotation(n),
	})
	return nil
}

// mapIdentityConstraint implements the <key>/<keyref>/<unique> mapping
// (§4.4): a selector XPath, a sequence of field XPaths, and — for keyref —
// a `refer` resolved against the identity-constraint symbol space. Unlike
// other top-level kinds, identity constraints are scoped to their owning
// element and are not reserved in phase A; they materialize inline, so a
// keyref's `refer` is looked up directly in the resolver rather than through
// requestByQName, and finds only a key/unique already mapped (see
// resolveIdentityConstraintByName).
func (m *mapCtx) mapIdentityConstraint(n node, category IdentityConstraintCategory) (Handle[IdentityConstraintDefinition], error) {
	name, _ := n.declaredName()
	ic := IdentityConstraintDefinition{
		Name:       name,
		Category:   category,
		Annotation: m.mapAnnotation(n),
	}
	if sel, ok := n.firstChildNamed("selector"); ok {
		ic.Selector = m.mapXPath(sel, "xpath")
	}
	for _, f := range n.childrenNamed("field") {
		ic.Fields = append(ic.Fields, m.mapXPath(f, "xpath"))
	}
	if category == ICKeyRef {
		if refer, ok := n.qnameAttr("refer"); ok {
			h, err := m.d.resolveIdentityConstraintByName(refer)
			if err != nil {
				return Handle[IdentityConstraintDefinition]{}, err
			}
			ic.Refer = h
		}
	}
	h := m.arena().CreateIdentityConstraintDefinition(ic)
	if category != ICKeyRef {
		_ = m.resolver().RegisterIdentityConstraint(name, h)
	}
	return h, nil
}

// resolveIdentityConstraintByName is a best-effort lookup for <keyref refer>
// targets: identity constraints aren't reserved in phase A (they're scoped
// to elements, not top-level), so this only finds constraints already
// materialized earlier in the same document; an as-yet-unseen forward
// reference is reported as unresolved.
func (d *driver) resolveIdentityConstraintByName(qn QName) (Handle[IdentityConstraintDefinition], error) {
	if h, ok := d.resolver.IdentityConstraints.resolve(qn); ok {
		return h, nil
	}
	return Handle[IdentityConstraintDefinition]{}, unresolvedReference(qn)
}
