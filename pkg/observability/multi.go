package observability

import (
	"context"
	"time"
)

// MultiSolver returns SolverHooks that forward every event to each of hooks
// in order. Nil entries are dropped.
func MultiSolver(hooks ...SolverHooks) SolverHooks {
	var m multiSolver
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

// MultiCache is the [CacheHooks] counterpart of [MultiSolver].
func MultiCache(hooks ...CacheHooks) CacheHooks {
	var m multiCache
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiSolver []SolverHooks

func (m multiSolver) OnSolveStart(ctx context.Context, constraints, objects int) {
	for _, h := range m {
		h.OnSolveStart(ctx, constraints, objects)
	}
}

func (m multiSolver) OnSolveComplete(ctx context.Context, s SolveStats, d time.Duration, err error) {
	for _, h := range m {
		h.OnSolveComplete(ctx, s, d, err)
	}
}

func (m multiSolver) OnRenderStart(ctx context.Context, format string) {
	for _, h := range m {
		h.OnRenderStart(ctx, format)
	}
}

func (m multiSolver) OnRenderComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	for _, h := range m {
		h.OnRenderComplete(ctx, format, size, d, err)
	}
}

type multiCache []CacheHooks

func (m multiCache) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheHit(ctx, keyType)
	}
}

func (m multiCache) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (m multiCache) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		h.OnCacheSet(ctx, keyType, size)
	}
}
