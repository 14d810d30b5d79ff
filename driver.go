package xsd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentflare-ai/go-xmldom"
)

// BuildOptions are the schema-read policy toggles from spec.md §6.
type BuildOptions struct {
	BuiltinOverwrite BuiltinOverwriteAction
	RegisterBuiltins RegisterBuiltins
	AllowDTD         bool
	Importers        []ImportResolver
	Logger           *slog.Logger
}

// Schema is the built, queryable result of a top-level Parse: the frozen
// arena plus every top-level symbol space, ready for the validator (C7) or
// a code generator to consume.
type Schema struct {
	TargetNamespace string
	Arena           *FrozenArena
	Resolver        *Resolver
	Builtins        *Builtins

	Elements  map[QName]Handle[ElementDeclaration]
	Types     map[QName]TypeRef
	Groups    map[QName]Handle[ModelGroupDefinition]
	AttrGroups map[QName]Handle[AttributeGroupDefinition]

	automata map[uint32]*automaton // keyed by ComplexTypeDefinition handle index
}

// Automaton returns the compiled, UPA-checked content-model DFA for a
// complex type's element-only/mixed content, or nil for empty/simple
// content (§4.6).
func (s *Schema) Automaton(h Handle[ComplexTypeDefinition]) *automaton {
	return s.automata[h.Index()]
}

// pendingEntry is a reserved-but-maybe-unmapped top-level component: its
// handle, the XML node to map it from, and whether mapping is in flight.
type pendingEntry struct {
	dyn        DynamicHandle
	n          node
	inProgress bool
	done       bool
}

// driver is C5, the two-phase top-level build coordinator. One driver
// instance is created per top-level Parse call (and one per imported
// schema, chained through the import chaser).
type driver struct {
	arena    *Arena
	resolver *Resolver
	builtins *Builtins
	opts     BuildOptions
	log      *slog.Logger
	chaser   *importChaser
	ns       *nsContext

	byQName map[QName]*pendingEntry // every top-level name, any kind

	elements   map[QName]Handle[ElementDeclaration]
	types      map[QName]TypeRef
	groups     map[QName]Handle[ModelGroupDefinition]
	attrGroups map[QName]Handle[AttributeGroupDefinition]
}

// Parse is the top-level entry point: given a parsed XML document whose
// root is <xs:schema>, build the complete component arena per spec.md §4.5.
func Parse(ctx context.Context, doc xmldom.Document, opts BuildOptions) (*Schema, error) {
	root := doc.DocumentElement()
	if root == nil {
		return nil, newError(ErrUnknownTopLevelElement, "document has no root element")
	}
	return parseSchemaElement(ctx, root, opts, nil)
}

func parseSchemaElement(ctx context.Context, root xmldom.Element, opts BuildOptions, chaser *importChaser) (schema *Schema, err error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		buildDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	arena := NewArena()
	resolver := NewResolver(opts.BuiltinOverwrite)

	tns := string(root.GetAttribute("targetNamespace"))
	d := &driver{
		arena:    arena,
		resolver: resolver,
		opts:     opts,
		log:      log,
		byQName:  make(map[QName]*pendingEntry),
		elements: make(map[QName]Handle[ElementDeclaration]),
		types:    make(map[QName]TypeRef),
		groups:   make(map[QName]Handle[ModelGroupDefinition]),
		attrGroups: make(map[QName]Handle[AttributeGroupDefinition]),
		ns: &nsContext{
			targetNamespace:      tns,
			prefixes:             collectPrefixes(root),
			elementFormDefault:   attrOrDefault(root, "elementFormDefault", "unqualified"),
			attributeFormDefault: attrOrDefault(root, "attributeFormDefault", "unqualified"),
		},
	}
	if chaser != nil {
		d.chaser = chaser
	} else {
		d.chaser = newImportChaser(opts.Importers)
	}

	if opts.RegisterBuiltins == RegisterBuiltinsYes {
		b, err := RegisterBuiltins(arena, resolver)
		if err != nil {
			return nil, err
		}
		d.builtins = b
	}

	schemaNode := newNode(root, d.ns)

	// Imports/includes resolve before phase A so their top-level sets are
	// visible to this schema's own name registration (§4.5).
	for _, imp := range schemaNode.children() {
		switch imp.localName() {
		case "import", "include", "redefine":
			namespace := imp.attrOr("namespace", "")
			loc := imp.attrOr("schemaLocation", "")
			log.Debug("chasing import", "namespace", namespace, "schemaLocation", loc)
			child, err := d.chaser.Chase(ctx, Import{Namespace: namespace, SchemaLocation: loc, IsInclude: imp.localName() != "import"})
			if err != nil {
				log.Warn("import failed, skipped per spec (non-fatal)", "namespace", namespace, "error", err)
				continue
			}
			if child == nil {
				continue
			}
			d.mergeImported(child)
		}
	}

	// Phase A: reserve + register every top-level component, without
	// mapping its content.
	for _, c := range schemaNode.children() {
		if err := d.reserveTopLevel(c); err != nil {
			return nil, err
		}
	}

	// Phase B: materialize everything reserved. Order doesn't matter — each
	// request is idempotent and lazily pulls in whatever it references.
	for qn, entry := range d.byQName {
		if err := d.materialize(qn, entry); err != nil {
			return nil, err
		}
	}

	frozen, err := arena.Freeze()
	if err != nil {
		return nil, err
	}

	for _, w := range resolver.Warnings() {
		log.Warn(w)
		buildResolverWarnings.WithLabelValues(tns).Inc()
	}

	automata, err := buildAllAutomata(frozen)
	if err != nil {
		return nil, err
	}

	return &Schema{
		TargetNamespace: tns,
		Arena:           frozen,
		Resolver:        resolver,
		Builtins:        d.builtins,
		Elements:        d.elements,
		Types:           d.types,
		Groups:          d.groups,
		AttrGroups:      d.attrGroups,
		automata:        automata,
	}, nil
}

// buildAllAutomata compiles and UPA-checks the content model of every
// element-only/mixed complex type once, right after Freeze (§4.6, §5
// "the arena is owned exclusively by the construction-phase driver").
func buildAllAutomata(frozen *FrozenArena) (map[uint32]*automaton, error) {
	out := make(map[uint32]*automaton)
	for i := 0; i < frozen.NumComplexTypeDefinitions(); i++ {
		h := complexTypeHandleAt(i)
		ct := frozen.ComplexTypeDefinition(h)
		if ct.Content.Variety != ContentElementOnly && ct.Content.Variety != ContentMixed {
			continue
		}
		if ct.Content.Particle.IsZero() {
			continue
		}
		a, err := buildParticleAutomaton(frozen, ct.Content.Particle)
		if err != nil {
			return nil, err
		}
		if err := checkUPA(frozen, a); err != nil {
			return nil, err
		}
		out[h.Index()] = a
	}
	return out, nil
}

// mergeImported folds an already-built child Schema's top-level names into
// this driver's resolver, so references from the importing schema resolve.
// The child's own arena stays separate; only its handles are borrowed — a
// deliberate simplification (§9 open design note: cross-arena borrowing is
// safe because handles are never invalidated, only the two FrozenArenas
// must both be kept alive by the caller for the lifetime of the Schema
// graph, which the generator/validator do by holding the whole import set).
func (d *driver) mergeImported(child *Schema) {
	for qn, h := range child.Elements {
		d.elements[qn] = h
		_ = d.resolver.RegisterElement(qn, h)
	}
	for qn, t := range child.Types {
		d.types[qn] = t
		_ = d.resolver.RegisterType(qn, t)
	}
	for qn, h := range child.Groups {
		d.groups[qn] = h
		_ = d.resolver.RegisterModelGroupDefinition(qn, h)
	}
	for qn, h := range child.AttrGroups {
		d.attrGroups[qn] = h
		_ = d.resolver.RegisterAttributeGroup(qn, h)
	}
}

func (d *driver) reserveTopLevel(n node) error {
	switch n.localName() {
	case "element":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <element> missing name")
		}
		h := d.arena.ReserveElementDeclaration()
		if err := d.resolver.RegisterElement(qn, h); err != nil {
			return err
		}
		d.elements[qn] = h
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindElementDeclaration, h), n: n}
	case "attribute":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <attribute> missing name")
		}
		h := d.arena.ReserveAttributeDeclaration()
		if err := d.resolver.RegisterAttribute(qn, h); err != nil {
			return err
		}
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindAttributeDeclaration, h), n: n}
	case "simpleType":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <simpleType> missing name")
		}
		h := d.arena.ReserveSimpleTypeDefinition()
		if err := d.resolver.RegisterType(qn, SimpleTypeRef(h)); err != nil {
			return err
		}
		d.types[qn] = SimpleTypeRef(h)
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindSimpleTypeDefinition, h), n: n}
	case "complexType":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <complexType> missing name")
		}
		h := d.arena.ReserveComplexTypeDefinition()
		if err := d.resolver.RegisterType(qn, ComplexTypeRef(h)); err != nil {
			return err
		}
		d.types[qn] = ComplexTypeRef(h)
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindComplexTypeDefinition, h), n: n}
	case "group":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <group> missing name")
		}
		h := d.arena.ReserveModelGroupDefinition()
		if err := d.resolver.RegisterModelGroupDefinition(qn, h); err != nil {
			return err
		}
		d.groups[qn] = h
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindModelGroupDefinition, h), n: n}
	case "attributeGroup":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <attributeGroup> missing name")
		}
		h := d.arena.ReserveAttributeGroupDefinition()
		if err := d.resolver.RegisterAttributeGroup(qn, h); err != nil {
			return err
		}
		d.attrGroups[qn] = h
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindAttributeGroupDefinition, h), n: n}
	case "notation":
		qn, ok := n.declaredName()
		if !ok {
			return newError(ErrUnnamedTopLevelElement, "top-level <notation> missing name")
		}
		h := d.arena.ReserveNotationDeclaration()
		if err := d.resolver.RegisterNotation(qn, h); err != nil {
			return err
		}
		d.byQName[qn] = &pendingEntry{dyn: Dynamic(KindNotationDeclaration, h), n: n}
	case "import", "include", "annotation", "redefine", "defaultOpenContent":
		// handled elsewhere (imports before phase A; annotation has no
		// name); defaultOpenContent is not mapped at all.
	default:
		return &SchemaError{Code: ErrUnknownTopLevelElement, Detail: "unexpected top-level element <" + n.localName() + ">"}
	}
	return nil
}

// requestByQName implements request_ref_by_node for reference resolution:
// look up qn in byQName (a locally reserved component); if found, ensure it
// is materialized and return its dynamic handle. A qname outside byQName is
// assumed to be already resolvable via the resolver (built-in or merged
// import), and is not driven through the cycle tracker again.
func (d *driver) requestByQName(qn QName) error {
	entry, ok := d.byQName[qn]
	if !ok {
		return nil
	}
	return d.materialize(qn, entry)
}

func (d *driver) materialize(qn QName, entry *pendingEntry) error {
	if entry.done {
		return nil
	}
	if entry.inProgress {
		return &SchemaError{Code: ErrCircularDependency, Name: qn, Handle: entry.dyn}
	}
	entry.inProgress = true
	mc := &mapCtx{d: d}
	var err error
	switch entry.dyn.Kind {
	case KindElementDeclaration:
		err = mc.mapTopLevelElement(Handle[ElementDeclaration]{}, entry)
	case KindAttributeDeclaration:
		err = mc.mapTopLevelAttribute(entry)
	case KindSimpleTypeDefinition:
		err = mc.mapTopLevelSimpleType(entry)
	case KindComplexTypeDefinition:
		err = mc.mapTopLevelComplexType(entry)
	case KindModelGroupDefinition:
		err = mc.mapTopLevelGroup(entry)
	case KindAttributeGroupDefinition:
		err = mc.mapTopLevelAttributeGroup(entry)
	case KindNotationDeclaration:
		err = mc.mapNotation(entry)
	default:
		err = fmt.Errorf("xsd: internal: unhandled top-level kind %s", entry.dyn.Kind)
	}
	entry.inProgress = false
	if err != nil {
		return err
	}
	entry.done = true
	return nil
}

func collectPrefixes(root xmldom.Element) map[string]string {
	out := map[string]string{"xml": "http://www.w3.org/XML/1998/namespace"}
	attrs := root.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		n := attrs.Item(i)
		if n == nil {
			continue
		}
		a, ok := n.(xmldom.Attr)
		if !ok {
			continue
		}
		name := string(a.NodeName())
		value := string(a.NodeValue())
		switch {
		case name == "xmlns":
			out[""] = value
		case len(name) > 6 && name[:6] == "xmlns:":
			out[name[6:]] = value
		}
	}
	return out
}

func attrOrDefault(e xmldom.Element, name, def string) string {
	v := string(e.GetAttribute(xmldom.DOMString(name)))
	if v == "" {
		return def
	}
	return v
}
