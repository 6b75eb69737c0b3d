// Package driver is the ambient orchestration layer outside the core's
// pure-function passes (spec.md §5, SPEC_FULL.md §1.1): it fans the
// CPU-bound, side-effect-free CST→HIR lowering step out across goroutines,
// then drives every later pass — resolution, type inference, bound
// checking, MIR lowering, monomorphization — sequentially per file, and
// persists a lightweight per-file disk cache between runs. Grounded on the
// teacher's internal/driver package: DiagnoseDirWithOptions's
// load-then-fan-out shape (parallel.go) and DiskCache's atomic
// write-then-rename msgpack store (dcache.go), scoped down to what this
// core's single-hir.Module-per-file passes actually need.
package driver

import (
	"context"
	"fmt"

	"corec/internal/bounds"
	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/mir"
	"corec/internal/mirlower"
	"corec/internal/mono"
	"corec/internal/resolve"
	"corec/internal/source"
	"corec/internal/types"
)

// Options configures one Compile run.
type Options struct {
	// MaxDiagnostics bounds every file's diag.Bag (corec.toml's
	// [diagnostics].capacity, internal/config.DiagnosticsConfig.Capacity).
	MaxDiagnostics int
	// Jobs caps the lowering worker pool; <= 0 means runtime.GOMAXPROCS(0).
	Jobs int
	// Cache is consulted and updated for each file's content hash; nil
	// disables caching entirely (every DiskCache method is a no-op on a
	// nil receiver, so callers need no extra branch).
	Cache *DiskCache
}

// FileReport is one compiled file's outcome: its own diagnostics, whether
// its content hash matched a clean prior run (Cached), and the MirModule
// internal/mirlower produced for it.
type FileReport struct {
	Path      string
	Bag       *diag.Bag
	Cached    bool
	MirModule *mir.MirModule
}

// Result is a whole Compile run's outcome: one report per input file plus
// the merged diagnostics and merged MIR across all of them.
type Result struct {
	Files  []FileReport
	Bag    *diag.Bag
	Merged *mir.MirModule
}

// Compile runs the full pipeline (spec.md §4.1-§4.7) over every fixture
// path in paths. Each file is its own self-contained compilation unit:
// internal/hir.DefId is only meaningful within the hir.Module it was
// allocated from (internal/arena hands out 1-based indices per arena
// instance, not a global space), so rather than resolve cross-file
// references against a shared DefId space this core does not have, every
// file gets its own hir.Module, *types.Context, bounds.Index and
// mir.MirModule; only internal/source.Interner and the type.Interner's
// builtin TyIds (both genuinely global, content-addressed tables) are
// shared. Lowering runs concurrently (LowerFilesParallel); every later
// pass runs one file at a time, matching §5's "parallel front end,
// sequential semantic passes" rule.
func Compile(ctx context.Context, strings *source.Interner, fileSet *source.FileSet, paths []string, opts Options) (*Result, error) {
	lowered, err := LowerFilesParallel(ctx, strings, fileSet, paths, opts.MaxDiagnostics, opts.Jobs)
	if err != nil {
		return nil, err
	}

	tys := types.NewInterner()
	merged := mir.NewMirModule()
	combined := diag.NewBag(opts.MaxDiagnostics * len(lowered))
	result := &Result{Bag: combined, Merged: merged}

	for _, fr := range lowered {
		report, err := compileFile(strings, tys, fr, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fr.Path, err)
		}
		result.Files = append(result.Files, *report)
		combined.Merge(report.Bag)
		mergeMir(merged, report.MirModule)
	}
	return result, nil
}

// compileFile runs resolution through monomorphization for one already
// lowered file, then records its content hash in opts.Cache.
func compileFile(strings *source.Interner, tys *types.Interner, fr FileResult, opts Options) (*FileReport, error) {
	m, bag := fr.Module, fr.Bag

	resolve.New(strings, bag, m).Resolve(m)

	idx := bounds.Build(m)
	checker := bounds.NewChecker(idx, m, strings, bag)

	tctx := types.NewContext(tys, bag)
	inf := types.NewInferer(m, strings, tctx)
	inf.Methods = bounds.NewMethodResolver(idx, m, strings, bag)
	inf.InferModule()

	for _, id := range m.Items {
		if d := m.Def(id); d != nil && d.Kind == hir.DefImpl {
			checker.CheckImpl(id)
		}
	}
	bounds.CheckCallSites(m, tctx, checker)

	mm := mono.New(m, tctx)
	mirModule, err := mirlower.LowerModule(m, tctx, strings, bag, mm.Monomorphize)
	if err != nil {
		return nil, err
	}

	hash := HashContent(fr.Content)
	broken := bag.HasErrors()

	var prior FilePayload
	cached, _ := opts.Cache.Get(hash, &prior)
	cached = cached && !prior.Broken

	_ = opts.Cache.Put(hash, &FilePayload{
		Path:        fr.Path,
		ContentHash: hash,
		Broken:      broken,
		ErrorCount:  countSeverity(bag, diag.SevError),
		DiagCount:   bag.Len(),
	})

	return &FileReport{Path: fr.Path, Bag: bag, Cached: cached, MirModule: mirModule}, nil
}

func countSeverity(bag *diag.Bag, min diag.Severity) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity >= min {
			n++
		}
	}
	return n
}

// mergeMir appends src's functions, externs, and type defs onto dst.
// AddFunction re-derives dst's byDef index per function, which is safe
// even when two files happen to reuse the same DefId numbering (each
// file's DefIds are only ever looked up against the MirModule it came
// from in practice — the merged module exists for inspection/printing,
// not cross-file FunctionByDef lookups).
func mergeMir(dst, src *mir.MirModule) {
	for _, f := range src.Functions {
		dst.AddFunction(f)
	}
	dst.Externs = append(dst.Externs, src.Externs...)
	dst.TypeDefs = append(dst.TypeDefs, src.TypeDefs...)
}
