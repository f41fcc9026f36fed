// Package testutil provides an in-memory stand-in for pool.ConnectionPool
// for use in package unit tests, in place of a live ClickHouse server.
package testutil

import (
	"context"
	"sync"

	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
	"github.com/ukis-h3cellstore/h3cellstore/errs"
	"github.com/ukis-h3cellstore/h3cellstore/pool"
)

// FakePool is a hand-rolled fake satisfying exec.Runner and window.Pool.
// Responses are keyed by the exact SQL string submitted; if Responder is
// set it takes precedence over the Batches/Errors maps, letting a test
// inspect the generated SQL directly. A query that matches neither map
// (with no Responder) fails with a DatabaseError.
type FakePool struct {
	mu sync.Mutex

	// Batches/Errors are looked up by exact query string.
	Batches map[string]*columnbatch.Batch
	Errors  map[string]error

	// Responder, if set, is called for every query instead of the maps
	// above.
	Responder func(ctx context.Context, query string) (*columnbatch.Batch, error)

	// Queries records every query string passed to RunQuery/Submit/
	// QueryReturnsRows, in call order, for assertions on generated SQL.
	Queries []string
}

// NewFakePool returns an empty FakePool ready for Batches/Errors/Responder
// to be populated.
func NewFakePool() *FakePool {
	return &FakePool{
		Batches: map[string]*columnbatch.Batch{},
		Errors:  map[string]error{},
	}
}

func (f *FakePool) record(query string) {
	f.mu.Lock()
	f.Queries = append(f.Queries, query)
	f.mu.Unlock()
}

// RunQuery implements exec.Runner.
func (f *FakePool) RunQuery(ctx context.Context, query string) (*columnbatch.Batch, error) {
	f.record(query)
	if f.Responder != nil {
		return f.Responder(ctx, query)
	}
	if err, ok := f.Errors[query]; ok {
		return nil, err
	}
	if b, ok := f.Batches[query]; ok {
		return b, nil
	}
	return nil, errs.Newf(errs.DatabaseError, "testutil.FakePool: no response configured for query %q", query)
}

// Submit implements window.Pool / pool.ConnectionPool's async contract by
// resolving synchronously and wrapping the result in an already-resolved
// AsyncResultHandle.
func (f *FakePool) Submit(ctx context.Context, query string) *pool.AsyncResultHandle {
	batch, err := f.RunQuery(ctx, query)
	return pool.NewResolvedHandle(batch, err)
}

// QueryReturnsRows implements window.Pool's prefetch existence check.
func (f *FakePool) QueryReturnsRows(ctx context.Context, query string) (bool, error) {
	batch, err := f.RunQuery(ctx, query)
	if err != nil {
		return false, err
	}
	return batch.Len() > 0, nil
}
