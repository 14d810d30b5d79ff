package xsd

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/groupcache"
)

// Import names one <xs:import>/<xs:include>/<xs:redefine> (redefine is
// folded in as an include per §9's decision to drop 1.0 redefine semantics
// in favor of 1.1 override, itself out of scope — see DESIGN.md).
type Import struct {
	Namespace      string // "" for xs:include, chameleon-include, or a namespace-less xs:import
	SchemaLocation string
	IsInclude      bool // true for <xs:include>/<xs:redefine>, which have no namespace to dedup by
}

// cacheKey implements §4.2's dedup rule: an <xs:import> is deduplicated by
// namespace alone (schemaLocation only decides which resolver call wins the
// race to populate that namespace's entry); an <xs:include>/<xs:redefine>
// has no namespace to dedup by at all, so its identity is the
// (namespace, schemaLocation) pair as before.
func (i Import) cacheKey() string {
	if i.IsInclude {
		return "include|" + i.Namespace + "|" + i.SchemaLocation
	}
	return "import|" + i.Namespace
}

// ImportResolver turns an Import into a parsed Schema. The driver uses the
// resolvers passed in BuildOptions.Importers; tests supply an in-memory
// stub.
type ImportResolver interface {
	Resolve(ctx context.Context, imp Import) (*Schema, error)
}

// ErrUnsupportedImport is returned by a resolver that recognizes the
// request but intentionally declines it (e.g. a chameleon-include loop
// guard it chooses to enforce itself).
type ErrUnsupportedImport struct{ Import Import }

func (e *ErrUnsupportedImport) Error() string {
	return fmt.Sprintf("xsd: unsupported import %s", e.Import.SchemaLocation)
}

// importResult is what actually gets memoized; groupcache's own Sink only
// naturally holds bytes/strings, so Chase stashes the real struct in result
// and uses the group purely for its single-flight/dedup behavior.
type importResult struct {
	schema *Schema
	err    error
}

// importChaser deduplicates concurrent/repeated fetches across an entire
// build — by namespace alone for imports, by (namespace, schemaLocation)
// for includes (§4.2) — the same role groupcache plays for agentflare-ai's
// own remote-schema cache (cache.go in the teacher). One chaser belongs to
// one top-level Parse call.
type importChaser struct {
	resolvers []ImportResolver

	mu      sync.Mutex
	results map[string]importResult
	pending map[string]Import

	group *groupcache.Group
}

// newImportChaser builds a chaser with a process-unique groupcache group
// name — groupcache panics if two groups share a name, and a long-lived
// process (e.g. a test binary) may construct
// many Schemas, so the name is derived from the chaser's own address rather
// than a static constant.
func newImportChaser(resolvers []ImportResolver) *importChaser {
	ic := &importChaser{
		resolvers: resolvers,
		results:   make(map[string]importResult),
	}
	ic.group = groupcache.NewGroup(fmt.Sprintf("xsd-imports-%p", ic), 8<<20, groupcache.GetterFunc(ic.fetch))
	return ic
}

// fetch is the groupcache Getter: it runs the real resolution chain once
// per key and records the outcome (schema pointer and error both) in the
// local map, then writes a trivial marker byte to dest purely so groupcache
// considers the key populated and dedups subsequent Get calls.
func (ic *importChaser) fetch(ctx context.Context, key string, dest groupcache.Sink) error {
	imp := ic.keyToImport(key)

	var (
		schema *Schema
		err    error
	)
	for _, r := range ic.resolvers {
		schema, err = r.Resolve(ctx, imp)
		if err == nil {
			break
		}
		var unsupported *ErrUnsupportedImport
		if !asUnsupported(err, &unsupported) {
			break
		}
	}

	ic.mu.Lock()
	ic.results[key] = importResult{schema: schema, err: err}
	ic.mu.Unlock()

	return dest.SetString("1")
}

func asUnsupported(err error, target **ErrUnsupportedImport) bool {
	u, ok := err.(*ErrUnsupportedImport)
	if ok {
		*target = u
	}
	return ok
}

// keyToImport remembers key->Import so fetch (which only receives the
// string key) can reconstruct the original request.
func (ic *importChaser) keyToImport(key string) Import {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if pending, ok := ic.pending[key]; ok {
		return pending
	}
	return Import{}
}

// Chase resolves imp, reusing any prior result per cacheKey's dedup rule
// (namespace alone for imports, namespace+location for includes). Safe for
// concurrent use.
func (ic *importChaser) Chase(ctx context.Context, imp Import) (*Schema, error) {
	key := imp.cacheKey()

	ic.mu.Lock()
	if ic.pending == nil {
		ic.pending = make(map[string]Import)
	}
	ic.pending[key] = imp
	ic.mu.Unlock()

	var sink string
	if err := ic.group.Get(ctx, key, groupcache.StringSink(&sink)); err != nil {
		return nil, err
	}

	ic.mu.Lock()
	res, ok := ic.results[key]
	ic.mu.Unlock()
	if !ok {
		return nil, newError(ErrImportFailure, "import chaser lost result for "+key)
	}
	return res.schema, res.err
}
