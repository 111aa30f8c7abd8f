package memdb

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourly/database"
)

type counter struct {
	ID    string `bson:"id"`
	Value int    `bson:"value"`
}

func TestInsertGetReplace(t *testing.T) {
	db := New()
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a", Value: 1}))
	assert.ErrorIs(t, db.Insert(ctx, "counters", "a", counter{ID: "a"}), database.ErrDuplicate)

	var got counter
	require.NoError(t, db.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 1, got.Value)
	assert.Equal(t, uint64(1), db.Version("counters", "a"))

	require.NoError(t, db.Replace(ctx, "counters", "a", counter{ID: "a", Value: 2}))
	require.NoError(t, db.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 2, got.Value)
	assert.Equal(t, uint64(2), db.Version("counters", "a"))

	assert.ErrorIs(t, db.Get(ctx, "counters", "missing", &got), database.ErrNotFound)
	assert.ErrorIs(t, db.Replace(ctx, "counters", "missing", counter{}), database.ErrNotFound)
}

func TestUpdateMutateErrorLeavesDocument(t *testing.T) {
	db := New()
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a", Value: 1}))

	var c counter
	err := db.Update(ctx, "counters", "a", &c, func() error {
		c.Value = 99
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var got counter
	require.NoError(t, db.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 1, got.Value)
}

func TestTransactionAbortWritesNothing(t *testing.T) {
	db := New()
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a", Value: 1}))

	err := db.RunTransaction(ctx, func(ctx context.Context, tx *Txn) error {
		require.NoError(t, tx.Set("counters", "a", counter{ID: "a", Value: 5}))
		require.NoError(t, tx.Create("counters", "b", counter{ID: "b"}))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var got counter
	require.NoError(t, db.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 1, got.Value)
	assert.ErrorIs(t, db.Get(ctx, "counters", "b", &got), database.ErrNotFound)
}

func TestTransactionReadsOwnWrites(t *testing.T) {
	db := New()
	ctx := context.Background()

	err := db.RunTransaction(ctx, func(ctx context.Context, tx *Txn) error {
		require.NoError(t, tx.Create("counters", "a", counter{ID: "a", Value: 7}))
		var c counter
		require.NoError(t, tx.Get("counters", "a", &c))
		assert.Equal(t, 7, c.Value)
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionRetriesOnStaleRead(t *testing.T) {
	db := New()
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a", Value: 0}))

	var calls int
	err := db.RunTransaction(ctx, func(ctx context.Context, tx *Txn) error {
		calls++
		var c counter
		if err := tx.Get("counters", "a", &c); err != nil {
			return err
		}
		if calls == 1 {
			// a concurrent writer commits between our read and our commit
			require.NoError(t, db.Replace(ctx, "counters", "a", counter{ID: "a", Value: 10}))
		}
		c.Value++
		return tx.Set("counters", "a", c)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	var got counter
	require.NoError(t, db.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 11, got.Value)
}

func TestTransactionConflictAfterBudget(t *testing.T) {
	db := New(WithMaxAttempts(3))
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a"}))

	var calls int
	err := db.RunTransaction(ctx, func(ctx context.Context, tx *Txn) error {
		calls++
		var c counter
		require.NoError(t, tx.Get("counters", "a", &c))
		require.NoError(t, db.Replace(ctx, "counters", "a", counter{ID: "a", Value: calls}))
		return tx.Set("counters", "a", c)
	})
	assert.ErrorIs(t, err, database.ErrTransactionConflict)
	assert.Equal(t, 3, calls)
}

func TestTransactionCreateDuplicate(t *testing.T) {
	db := New()
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a"}))

	err := db.RunTransaction(ctx, func(ctx context.Context, tx *Txn) error {
		return tx.Create("counters", "a", counter{ID: "a"})
	})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestConcurrentIncrementsAreSerialized(t *testing.T) {
	db := New(WithMaxAttempts(1000))
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, "counters", "a", counter{ID: "a"}))

	const workers = 20
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.RunTransaction(ctx, func(ctx context.Context, tx *Txn) error {
				var c counter
				if err := tx.Get("counters", "a", &c); err != nil {
					return err
				}
				c.Value++
				return tx.Set("counters", "a", c)
			})
			if err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	var got counter
	require.NoError(t, db.Get(ctx, "counters", "a", &got))
	assert.Equal(t, workers, got.Value)
}

func TestCancelledContext(t *testing.T) {
	db := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.RunTransaction(ctx, func(context.Context, *Txn) error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
