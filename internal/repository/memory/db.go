package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/model"
)

var _ model.Transactor = (*DB)(nil)

// DB is an in-process store for development and tests. Transactions are
// fully serialized and roll back by restoring a snapshot.
type DB struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	materials map[uuid.UUID]model.Material
	users     map[uuid.UUID]model.User
}

// NewDB creates an empty DB.
func NewDB() *DB {
	return &DB{
		materials: make(map[uuid.UUID]model.Material),
		users:     make(map[uuid.UUID]model.User),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(struct{})
	return ok
}

// WithinTransaction runs fn while holding the transaction lock. Changes made
// by fn are discarded when it returns an error.
func (db *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	materials, users := db.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, struct{}{}))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		db.mu.Lock()
		db.materials, db.users = materials, users
		db.mu.Unlock()
		return err
	}
	return nil
}

// WithinSnapshot runs fn while holding the transaction lock so no writer
// interleaves with its reads.
func (db *DB) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// Ping implements the health check of the HTTP front door.
func (db *DB) Ping(context.Context) error {
	return nil
}

func (db *DB) snapshot() (map[uuid.UUID]model.Material, map[uuid.UUID]model.User) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	materials := make(map[uuid.UUID]model.Material, len(db.materials))
	for id, m := range db.materials {
		materials[id] = cloneMaterial(m)
	}
	users := make(map[uuid.UUID]model.User, len(db.users))
	for id, u := range db.users {
		users[id] = u
	}
	return materials, users
}

// write applies fn under the data lock. Outside of a transaction it also
// takes the transaction lock so single writes never interleave with one.
func (db *DB) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

func (db *DB) read(fn func()) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn()
}

func cloneMaterial(m model.Material) model.Material {
	m.Authors = slices.Clone(m.Authors)
	m.Instructors = slices.Clone(m.Instructors)
	m.Branches = slices.Clone(m.Branches)
	m.Upvotes = slices.Clone(m.Upvotes)
	if m.Contributor != nil {
		c := *m.Contributor
		m.Contributor = &c
	}
	return m
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
