// Package mutable provides context that can store multiple values and be updated after creation
package mutable

import (
	"context"
	"sync"
)

// Context interface, provides additional Set method to change values of the context after creation
type Context interface {
	context.Context

	// Set stores value under the key, shadowing values of parent contexts
	Set(key, value interface{})

	// SetCleanup registers function called once on first Cancel, replacing previous one
	SetCleanup(cleanup func())

	// Cancel cancels the context and runs cleanup, if any
	Cancel()
}

type mutableContext struct {
	context.Context
	values  map[interface{}]interface{}
	cancel  context.CancelFunc
	cleanup func()
	once    sync.Once
	mutex   sync.RWMutex
}

func (mctx *mutableContext) Set(key, value interface{}) {
	mctx.mutex.Lock()
	mctx.values[key] = value
	mctx.mutex.Unlock()
}

func (mctx *mutableContext) SetCleanup(cleanup func()) {
	mctx.mutex.Lock()
	mctx.cleanup = cleanup
	mctx.mutex.Unlock()
}

func (mctx *mutableContext) Value(key interface{}) interface{} {
	mctx.mutex.RLock()
	res, ok := mctx.values[key]
	mctx.mutex.RUnlock()

	if ok {
		return res
	}

	return mctx.Context.Value(key)
}

func (mctx *mutableContext) Cancel() {
	mctx.cancel()

	mctx.once.Do(func() {
		mctx.mutex.RLock()
		cleanup := mctx.cleanup
		mctx.mutex.RUnlock()

		if cleanup != nil {
			cleanup()
		}
	})
}

// NewMutableContext returns new Context instance
func NewMutableContext(parent context.Context) Context {
	ctx, cancel := context.WithCancel(parent)

	return &mutableContext{
		Context: ctx,
		values:  make(map[interface{}]interface{}),
		cancel:  cancel,
	}
}
