// SPDX-License-Identifier: EPL-2.0

// Package pool keeps small free lists of reusable objects keyed by the
// parameters they were built with.
package pool

import (
	"errors"
	"sync"
)

// DefaultDepth is the number of idle objects kept per key.
const DefaultDepth = 3

// ErrForeignObject is returned by Release for an object the pool did not hand out.
var ErrForeignObject = errors.New("pool: object was not acquired from this pool")

// Pool hands out objects of type T built for a key K. Objects returned with
// Release are reset and kept for the next Acquire of the same key, up to
// the pool depth; extras are dropped.
type Pool[K comparable, T comparable] struct {
	newFn   func(K) (T, error)
	resetFn func(T) error
	depth   int

	mtx    *sync.Mutex
	free   map[K][]T
	leased map[T]K
}

// New returns a pool with the given depth. resetFn may be nil.
func New[K comparable, T comparable](depth int, newFn func(K) (T, error), resetFn func(T) error) *Pool[K, T] {
	if depth < 0 {
		depth = 0
	}

	return &Pool[K, T]{
		newFn:   newFn,
		resetFn: resetFn,
		depth:   depth,
		mtx:     &sync.Mutex{},
		free:    make(map[K][]T),
		leased:  make(map[T]K),
	}
}

// Acquire returns an idle object for key, or builds a new one.
func (p *Pool[K, T]) Acquire(key K) (T, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if list := p.free[key]; len(list) > 0 {
		v := list[len(list)-1]
		p.free[key] = list[:len(list)-1]
		p.leased[v] = key

		return v, nil
	}

	v, err := p.newFn(key)
	if err != nil {
		var zero T
		return zero, err
	}
	p.leased[v] = key

	return v, nil
}

// Release resets v and returns it to the free list of the key it was
// acquired with. A failed reset drops the object and returns the error.
func (p *Pool[K, T]) Release(v T) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	key, ok := p.leased[v]
	if !ok {
		return ErrForeignObject
	}
	delete(p.leased, v)

	if p.resetFn != nil {
		if err := p.resetFn(v); err != nil {
			return err
		}
	}

	if len(p.free[key]) < p.depth {
		p.free[key] = append(p.free[key], v)
	}

	return nil
}

// Idle returns the number of free objects kept for key.
func (p *Pool[K, T]) Idle(key K) int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return len(p.free[key])
}

// Leased returns the number of objects currently handed out.
func (p *Pool[K, T]) Leased() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return len(p.leased)
}
