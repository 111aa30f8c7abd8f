// Package memdb is an in-process document store with optimistic transactions. It backs
// the "memory" store backend used for local development and tests.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"tourly/database"
)

type record struct {
	data    []byte
	version uint64
}

type docKey struct {
	collection string
	id         string
}

// DB holds BSON-encoded documents grouped by collection. Every document carries a version
// that is bumped on each committed write; transactions validate the versions they read.
type DB struct {
	mu          sync.RWMutex
	collections map[string]map[string]record

	maxAttempts int
	backoff     time.Duration
}

type Option func(*DB)

// WithMaxAttempts bounds how many times RunTransaction executes its function.
func WithMaxAttempts(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.maxAttempts = n
		}
	}
}

// WithBackoff sets the base wait between attempts; attempt n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(db *DB) { db.backoff = d }
}

func New(opts ...Option) *DB {
	db := &DB{
		collections: make(map[string]map[string]record),
		maxAttempts: 5,
		backoff:     time.Millisecond,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) lookup(k docKey) (record, bool) {
	coll, ok := db.collections[k.collection]
	if !ok {
		return record{}, false
	}
	rec, ok := coll[k.id]
	return rec, ok
}

func (db *DB) store(k docKey, data []byte) {
	coll, ok := db.collections[k.collection]
	if !ok {
		coll = make(map[string]record)
		db.collections[k.collection] = coll
	}
	prev := coll[k.id]
	coll[k.id] = record{data: data, version: prev.version + 1}
}

// Get decodes the document into dest.
func (db *DB) Get(ctx context.Context, collection, id string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.RLock()
	rec, ok := db.lookup(docKey{collection, id})
	db.mu.RUnlock()
	if !ok {
		return database.ErrNotFound
	}
	return bson.Unmarshal(rec.data, dest)
}

// Insert writes a new document and fails with database.ErrDuplicate if the id is taken.
func (db *DB) Insert(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memdb: encode %s/%s: %w", collection, id, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.lookup(docKey{collection, id}); exists {
		return database.ErrDuplicate
	}
	db.store(docKey{collection, id}, data)
	return nil
}

// Replace overwrites an existing document.
func (db *DB) Replace(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memdb: encode %s/%s: %w", collection, id, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.lookup(docKey{collection, id}); !exists {
		return database.ErrNotFound
	}
	db.store(docKey{collection, id}, data)
	return nil
}

// Update applies mutate to the decoded document under the write lock. mutate must only
// change dest; returning an error leaves the document untouched.
func (db *DB) Update(ctx context.Context, collection, id string, dest interface{}, mutate func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	k := docKey{collection, id}
	rec, ok := db.lookup(k)
	if !ok {
		return database.ErrNotFound
	}
	if err := bson.Unmarshal(rec.data, dest); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	data, err := bson.Marshal(dest)
	if err != nil {
		return fmt.Errorf("memdb: encode %s/%s: %w", collection, id, err)
	}
	db.store(k, data)
	return nil
}

// All returns a snapshot of every document in the collection. Order is unspecified.
func (db *DB) All(ctx context.Context, collection string) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	coll := db.collections[collection]
	out := make([]bson.Raw, 0, len(coll))
	for _, rec := range coll {
		out = append(out, bson.Raw(rec.data))
	}
	return out, nil
}

// Version reports the committed version of a document, 0 when absent.
func (db *DB) Version(collection, id string) uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, _ := db.lookup(docKey{collection, id})
	return rec.version
}

var errStaleRead = errors.New("memdb: stale read")

// RunTransaction executes fn against a consistent view and commits its buffered writes
// atomically. If a document fn read was changed by another commit in the meantime the
// writes are discarded and fn runs again, up to the configured attempt budget, after
// which database.ErrTransactionConflict is returned. Errors returned by fn abort the
// transaction without retry.
func (db *DB) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx *Txn) error) error {
	for attempt := 1; attempt <= db.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := &Txn{db: db, reads: make(map[docKey]uint64), pending: make(map[docKey]*write)}
		if err := fn(ctx, tx); err != nil {
			return err
		}

		err := tx.commit()
		if err == nil {
			return nil
		}
		if !errors.Is(err, errStaleRead) {
			return err
		}

		if attempt == db.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * db.backoff):
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", db.maxAttempts, database.ErrTransactionConflict)
}

type write struct {
	data   []byte
	create bool
}

// Txn buffers writes until commit. Reads observe the transaction's own pending writes.
type Txn struct {
	db      *DB
	reads   map[docKey]uint64
	pending map[docKey]*write
	order   []docKey
}

func (t *Txn) Get(collection, id string, dest interface{}) error {
	k := docKey{collection, id}
	if w, ok := t.pending[k]; ok {
		return bson.Unmarshal(w.data, dest)
	}

	t.db.mu.RLock()
	rec, ok := t.db.lookup(k)
	t.db.mu.RUnlock()

	if _, seen := t.reads[k]; !seen {
		t.reads[k] = rec.version
	}
	if !ok {
		return database.ErrNotFound
	}
	return bson.Unmarshal(rec.data, dest)
}

// Create buffers a new document; the commit fails with database.ErrDuplicate if it exists.
func (t *Txn) Create(collection, id string, doc interface{}) error {
	return t.buffer(docKey{collection, id}, doc, true)
}

// Set buffers a full overwrite of the document.
func (t *Txn) Set(collection, id string, doc interface{}) error {
	return t.buffer(docKey{collection, id}, doc, false)
}

func (t *Txn) buffer(k docKey, doc interface{}, create bool) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memdb: encode %s/%s: %w", k.collection, k.id, err)
	}
	if w, ok := t.pending[k]; ok {
		w.data = data
		return nil
	}
	t.pending[k] = &write{data: data, create: create}
	t.order = append(t.order, k)
	return nil
}

func (t *Txn) commit() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	for k, seen := range t.reads {
		rec, _ := t.db.lookup(k)
		if rec.version != seen {
			return errStaleRead
		}
	}
	for _, k := range t.order {
		if _, exists := t.db.lookup(k); exists && t.pending[k].create {
			return database.ErrDuplicate
		}
	}
	for _, k := range t.order {
		t.db.store(k, t.pending[k].data)
	}
	return nil
}
