package xsd

// mapCtx bundles the per-driver state every mapping procedure needs:
// arena access, name resolution, and the request-by-qname hook that drives
// phase B's lazy, cycle-checked materialization (§4.5).
type mapCtx struct {
	d *driver
}

func (m *mapCtx) arena() *Arena       { return m.d.arena }
func (m *mapCtx) resolver() *Resolver { return m.d.resolver }
func (m *mapCtx) ns() *nsContext      { return m.d.ns }

// mapAnnotation maps an optional <annotation> child into a handle, or the
// zero handle if none is present.
func (m *mapCtx) mapAnnotation(parent node) Handle[Annotation] {
	an, ok := parent.firstChildNamed("annotation")
	if !ok {
		return Handle[Annotation]{}
	}
	var children []AnnotationChild
	for _, c := range an.children() {
		switch c.localName() {
		case "appinfo":
			children = append(children, AnnotationChild{Kind: AppInfoChild, Source: c.attrOr("source", ""), Text: c.text()})
		case "documentation":
			children = append(children, AnnotationChild{Kind: DocumentationChild, Source: c.attrOr("source", ""), Text: c.text()})
		}
	}
	return m.arena().CreateAnnotation(Annotation{Children: children})
}

// resolveTypeRef resolves a type attribute value (already split into a
// QName by the caller) against the shared type symbol space, requesting
// materialization first if it names a locally reserved top-level type.
func (m *mapCtx) resolveTypeRef(qn QName) (TypeRef, error) {
	if err := m.d.requestByQName(qn); err != nil {
		return TypeRef{}, err
	}
	ref, ok := m.resolver().Types.resolve(qn)
	if !ok {
		return TypeRef{}, unresolvedReference(qn)
	}
	return ref, nil
}

func (m *mapCtx) resolveElementRef(qn QName) (Handle[ElementDeclaration], error) {
	if err := m.d.requestByQName(qn); err != nil {
		return Handle[ElementDeclaration]{}, err
	}
	h, ok := m.resolver().Elements.resolve(qn)
	if !ok {
		return Handle[ElementDeclaration]{}, unresolvedReference(qn)
	}
	return h, nil
}

func (m *mapCtx) resolveAttributeRef(qn QName) (Handle[AttributeDeclaration], error) {
	if err := m.d.requestByQName(qn); err != nil {
		return Handle[AttributeDeclaration]{}, err
	}
	h, ok := m.resolver().Attributes.resolve(qn)
	if !ok {
		return Handle[AttributeDeclaration]{}, unresolvedReference(qn)
	}
	return h, nil
}

func (m *mapCtx) resolveAttributeGroupRef(qn QName) (Handle[AttributeGroupDefinition], error) {
	if err := m.d.requestByQName(qn); err != nil {
		return Handle[AttributeGroupDefinition]{}, err
	}
	h, ok := m.resolver().AttributeGroups.resolve(qn)
	if !ok {
		return Handle[AttributeGroupDefinition]{}, unresolvedReference(qn)
	}
	return h, nil
}

func (m *mapCtx) resolveGroupRef(qn QName) (Handle[ModelGroupDefinition], error) {
	if err := m.d.requestByQName(qn); err != nil {
		return Handle[ModelGroupDefinition]{}, err
	}
	h, ok := m.resolver().ModelGroupDefs.resolve(qn)
	if !ok {
		return Handle[ModelGroupDefinition]{}, unresolvedReference(qn)
	}
	return h, nil
}

func (m *mapCtx) resolveIdentityConstraintRef(qn QName) (Handle[IdentityConstraintDefinition], error) {
	if err := m.d.requestByQName(qn); err != nil {
		return Handle[IdentityConstraintDefinition]{}, err
	}
	h, ok := m.resolver().IdentityConstraints.resolve(qn)
	if !ok {
		return Handle[IdentityConstraintDefinition]{}, unresolvedReference(qn)
	}
	return h, nil
}

// anyTypeRef is the default type definition for an element/attribute that
// names none explicitly (§4.4 element mapping's final fallback).
func (m *mapCtx) anyTypeRef() TypeRef {
	if m.d.builtins == nil {
		return TypeRef{}
	}
	return ComplexTypeRef(m.d.builtins.AnyType)
}

func (m *mapCtx) anySimpleTypeRef() Handle[SimpleTypeDefinition] {
	if m.d.builtins == nil {
		return Handle[SimpleTypeDefinition]{}
	}
	return m.d.builtins.AnySimpleType
}

func (m *mapCtx) valueConstraint(n node) ValueConstraint {
	if v, ok := n.attr("fixed"); ok {
		return ValueConstraint{Variety: FixedValueConstraint, Lexical: v}
	}
	if v, ok := n.attr("default"); ok {
		return ValueConstraint{Variety: DefaultValueConstraint, Lexical: v}
	}
	return ValueConstraint{}
}

func (m *mapCtx) mapXPath(n node, attrName string) XPathExpression {
	return XPathExpression{
		Namespaces:       m.ns().prefixes,
		DefaultNamespace: m.ns().prefixes[""],
		Expression:       n.attrOr(attrName, ""),
	}
}
