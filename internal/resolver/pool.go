package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Pool is the bounded worker pool of spec.md §5, grounded on the
// teacher's channel-based downloadAlbumsUnified worker pool in
// internal/services/services.go but built on golang.org/x/sync/errgroup
// so the pool gets coordinated cancellation for free — the raw
// channel-plus-WaitGroup shape the teacher uses has no way to express
// "abandon the current directory after its current provider call
// returns" (spec.md §5's cancellation contract) without hand-rolling
// context propagation itself.
type Pool struct {
	group        *errgroup.Group
	ctx          context.Context
	singleflight singleflight.Group
}

// NewPool builds a pool bounded to concurrency workers. Interactive mode
// should pass concurrency=1 so prompts are serialized, per spec.md §5.
func NewPool(ctx context.Context, concurrency int) *Pool {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	return &Pool{group: group, ctx: groupCtx}
}

// Submit runs fn for albumRoot, ensuring two workers never process the
// same album root simultaneously (golang.org/x/sync/singleflight keyed by
// path), per spec.md §5's ordering guarantee.
func (p *Pool) Submit(albumRoot string, fn func(ctx context.Context) error) {
	p.group.Go(func() error {
		_, err, _ := p.singleflight.Do(albumRoot, func() (interface{}, error) {
			return nil, fn(p.ctx)
		})
		return err
	})
}

// Wait blocks until every submitted task has completed, returning the
// first non-nil error (if any) exactly as errgroup.Group.Wait does.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
