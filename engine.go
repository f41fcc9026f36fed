// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package h3cellstore is the query-engine bridge between a ClickHouse-backed
// family of H3-indexed tables and a client that reasons about geospatial
// data by cell or polygon. See SPEC_FULL.md for the full specification.
package h3cellstore

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ukis-h3cellstore/h3cellstore/cellkit"
	"github.com/ukis-h3cellstore/h3cellstore/exec"
	"github.com/ukis-h3cellstore/h3cellstore/pool"
	"github.com/ukis-h3cellstore/h3cellstore/query"
	"github.com/ukis-h3cellstore/h3cellstore/resultset"
	"github.com/ukis-h3cellstore/h3cellstore/tableset"
	"github.com/ukis-h3cellstore/h3cellstore/window"
)

// Config configures an Engine.
type Config struct {
	// Database is the ClickHouse database name tables live in.
	Database string
	// WindowMaxSize is the largest number of child cells a single
	// sliding window may contain (spec section 4.7 step 1).
	WindowMaxSize int
	// WindowConcurrencyLimit bounds the sliding window's prefetch
	// pipeline (spec section 6, window_num_concurrent_queries).
	WindowConcurrencyLimit int
}

// Engine is the top-level object a host binding wires up: it owns a
// ConnectionPool and the discovered TableSets, and exposes the two entry
// points spec section 2 describes: FetchCells and NewSlidingWindow.
type Engine struct {
	cfg  Config
	pool *pool.ConnectionPool
	log  *logrus.Entry

	mu        sync.RWMutex
	tableSets map[string]*tableset.TableSet
}

// Open opens a ConnectionPool against poolCfg and returns an Engine with no
// tablesets discovered yet - call RefreshTableSets before FetchCells.
func Open(poolCfg pool.Config, cfg Config, log *logrus.Entry) (*Engine, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	p, err := pool.Open(poolCfg, log)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, pool: p, log: log, tableSets: map[string]*tableset.TableSet{}}, nil
}

// Close releases the underlying connection pool.
func (e *Engine) Close(ctx context.Context) error {
	return e.pool.Close(ctx)
}

// RefreshTableSets re-runs discovery against the database's system catalog,
// per spec section 4.6's list_tablesets.
func (e *Engine) RefreshTableSets(ctx context.Context) error {
	ts, err := e.pool.ListTableSets(ctx, e.cfg.Database)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.tableSets = ts
	e.mu.Unlock()
	return nil
}

// TableSet returns the discovered TableSet for basename, if any.
func (e *Engine) TableSet(basename string) (*tableset.TableSet, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ts, ok := e.tableSets[basename]
	return ts, ok
}

// FetchCells implements spec section 2's fetch_cells(cells, template?):
// plan a union query against basename's tableset, submit it to the pool,
// and return a ResultSet wrapping the in-flight handle. template may be
// the zero Template (query.AutoGenerated()).
func (e *Engine) FetchCells(ctx context.Context, basename string, cells []cellkit.Cell, template query.Template) (*resultset.ResultSet, error) {
	ts, ok := e.TableSet(basename)
	if !ok {
		return nil, tableSetNotFound(basename)
	}

	planner := query.NewPlanner(ts)
	sql, err := planner.BuildSelectQuery(cells, template)
	if err != nil {
		return nil, err
	}

	handle := e.pool.Submit(ctx, sql)
	return resultset.FromHandle(handle, cells, nil), nil
}

// FetchCellsUncompacted is like FetchCells but resolves the handle eagerly
// and uncompacts the result against cells, per spec section 4.5's
// execute_uncompacting. Most callers that actually need uncompacted rows
// (rather than raw compacted+base rows) want this rather than FetchCells.
func (e *Engine) FetchCellsUncompacted(ctx context.Context, basename string, cells []cellkit.Cell, template query.Template) (*resultset.ResultSet, error) {
	ts, ok := e.TableSet(basename)
	if !ok {
		return nil, tableSetNotFound(basename)
	}

	planner := query.NewPlanner(ts)
	sql, err := planner.BuildSelectQuery(cells, template)
	if err != nil {
		return nil, err
	}

	executor := exec.NewExecutor(e.pool)
	batch, err := executor.ExecuteUncompacting(ctx, sql, cells)
	if err != nil {
		return nil, err
	}
	return resultset.FromBatch(batch, cells, nil), nil
}

// NewSlidingWindow implements spec section 2's create_window: a lazy
// iterator over per-window result sets for a polygon query.
func (e *Engine) NewSlidingWindow(
	ctx context.Context, basename string, polygon cellkit.Polygon, targetResolution int,
	queryTemplate, prefetchTemplate query.Template, hasPrefetchTemplate bool,
) (*window.SlidingWindow, error) {
	ts, ok := e.TableSet(basename)
	if !ok {
		return nil, tableSetNotFound(basename)
	}

	return window.Create(ctx, window.Config{
		Polygon:             polygon,
		TargetResolution:    targetResolution,
		WindowMaxSize:       e.cfg.WindowMaxSize,
		TableSet:            ts,
		QueryTemplate:       queryTemplate,
		PrefetchTemplate:    prefetchTemplate,
		HasPrefetchTemplate: hasPrefetchTemplate,
		ConcurrencyLimit:    e.cfg.WindowConcurrencyLimit,
		Pool:                e.pool,
		Log:                 e.log,
	})
}

func tableSetNotFound(basename string) error {
	return &tableSetNotFoundError{basename: basename}
}

type tableSetNotFoundError struct {
	basename string
}

func (e *tableSetNotFoundError) Error() string {
	return "no tableset discovered for basename " + e.basename
}
