package cache

import (
	"database/sql"
	"sync"
)

// StmtCache is an LRU of prepared statements keyed by SQL text.
//
// Statements are handed out pinned. A pinned statement that gets evicted
// stays open until its last user calls release.
type StmtCache struct {
	mu  sync.Mutex // guards pin counts; held around every lru call
	lru *LRU[string, *pinnedStmt]
}

type pinnedStmt struct {
	stmt    *sql.Stmt
	pins    int
	evicted bool
}

// NewStmtCache creates a statement cache holding at most capacity entries.
func NewStmtCache(capacity int) *StmtCache {
	sc := &StmtCache{}
	sc.lru = New(capacity, func(_ string, p *pinnedStmt) {
		p.evicted = true
		if p.pins == 0 {
			_ = p.stmt.Close() // Best effort close.
		}
	})
	return sc
}

// Acquire returns the statement cached for query, pinned. release must be
// called once the caller is done issuing it.
func (sc *StmtCache) Acquire(query string) (stmt *sql.Stmt, release func(), ok bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	p, ok := sc.lru.Get(query)
	if !ok {
		return nil, nil, false
	}
	p.pins++
	return p.stmt, sc.releaser(p), true
}

// Add caches stmt under query and returns it pinned. When another caller
// cached query first, stmt is closed and the cached statement is returned.
func (sc *StmtCache) Add(query string, stmt *sql.Stmt) (*sql.Stmt, func()) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if p, ok := sc.lru.Peek(query); ok {
		_ = stmt.Close()
		p.pins++
		return p.stmt, sc.releaser(p)
	}

	p := &pinnedStmt{stmt: stmt, pins: 1}
	sc.lru.Set(query, p)
	return stmt, sc.releaser(p)
}

func (sc *StmtCache) releaser(p *pinnedStmt) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			sc.mu.Lock()
			defer sc.mu.Unlock()

			p.pins--
			if p.evicted && p.pins == 0 {
				_ = p.stmt.Close()
			}
		})
	}
}

// Pinned reports how many callers currently hold the statement for query.
func (sc *StmtCache) Pinned(query string) int {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if p, ok := sc.lru.Peek(query); ok {
		return p.pins
	}
	return 0
}

// Clear evicts every statement. Pinned ones close on release.
func (sc *StmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.lru.Clear()
}

// Len returns the number of cached statements.
func (sc *StmtCache) Len() int {
	return sc.lru.Len()
}

// Stats returns cache statistics.
func (sc *StmtCache) Stats() Stats {
	return sc.lru.Stats()
}
