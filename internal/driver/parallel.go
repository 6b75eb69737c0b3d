package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/lower"
	"corec/internal/source"
)

// FileResult is one file's CST→HIR lowering output (spec.md §4.1). Each
// file gets its own hir.Module and diag.Bag during the parallel stage:
// hir.Module is built on internal/arena, which has no locking of its own,
// so two goroutines lowering into the same Module would race on its
// backing slices. internal/diag.Bag is likewise unsynchronized, so it too
// stays one-per-file until the sequential stages merge everything.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Content []byte
	Module  *hir.Module
	Bag     *diag.Bag
}

// LowerFilesParallel loads every fixture path sequentially (source.FileSet
// itself has no internal lock, so — matching the teacher's
// DiagnoseDirWithOptions, which populates fileIDs/loadErrors in a plain
// for loop before ever starting a goroutine — every Load call happens on
// the calling goroutine), then fans the CPU-bound decode+lower step out
// across an errgroup.Group capped at jobs workers
// (runtime.GOMAXPROCS(0) when jobs <= 0). A load or decode failure for one
// file aborts the whole group via the shared context, matching errgroup's
// fail-fast convention; a file that loads fine but lowers imperfectly
// still succeeds here, since internal/lower never fails a file outright
// (malformed nodes become placeholder HIR, per spec.md §4.1).
func LowerFilesParallel(ctx context.Context, strings *source.Interner, fileSet *source.FileSet, paths []string, maxDiagnostics, jobs int) ([]FileResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	fileIDs := make([]source.FileID, len(paths))
	for i, path := range paths {
		id, err := fileSet.Load(path)
		if err != nil {
			return nil, err
		}
		fileIDs[i] = id
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				content := fileSet.Get(fileIDs[i]).Content
				root, err := LoadFixture(content)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				module := hir.NewModule()
				bag := diag.NewBag(maxDiagnostics)
				lower.New(module, strings, bag).LowerFile(root)

				results[i] = FileResult{Path: path, FileID: fileIDs[i], Content: content, Module: module, Bag: bag}
				return nil
			}
		}(i, path))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
