// Package mempool maintains the pending transactions for the blockchain.
package mempool

import (
	"sync"
)

// Mempool represents the ordered set of transactions that have been
// submitted but not yet mined into a block. Duplicates are kept since the
// pool performs no identity checks on what it is given.
type Mempool[T any] struct {
	pool []T
	mu   sync.RWMutex
}

// New constructs a new, empty mempool.
func New[T any]() *Mempool[T] {
	return &Mempool[T]{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool[T]) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the new
// number of pending transactions.
func (mp *Mempool[T]) Add(tx T) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns the pending transactions in submission order.
func (mp *Mempool[T]) Copy() []T {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]T, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Drop removes the oldest n transactions from the pool. This is used once
// a block holding exactly those transactions has been accepted.
func (mp *Mempool[T]) Drop(n int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if n >= len(mp.pool) {
		mp.pool = nil
		return
	}
	if n <= 0 {
		return
	}

	remain := make([]T, len(mp.pool)-n)
	copy(remain, mp.pool[n:])
	mp.pool = remain
}
