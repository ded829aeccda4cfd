package compiler

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/isleforge/isleforge/internal/types"
)

// CompileBatch compiles many independent templates concurrently. Each unit
// is isolated: a panic or failure in one template becomes a failed
// CompilationResult in its slot and never aborts its siblings.
func (c *Compiler) CompileBatch(ctx context.Context, reqs []CompileRequest) []*types.CompilationResult {
	results := make([]*types.CompilationResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, req := range reqs {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = &types.CompilationResult{
						Success:  false,
						Errors:   []string{fmt.Sprintf("compilation panicked: %v", r)},
						Warnings: []string{},
					}
				}
			}()
			results[i] = c.Compile(ctx, req)
			// Failures are captured in the result, never returned, so one
			// bad template cannot cancel the group.
			return nil
		})
	}

	// The group never returns an error by construction.
	_ = g.Wait()

	return results
}
