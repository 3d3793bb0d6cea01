package cache

import (
	"context"
	"sync"
	"time"
)

// Loader fetches the value for key. ok=false means the key does not exist;
// such results and errors are never cached.
type Loader[T any] func(ctx context.Context, key string) (value T, ok bool, err error)

type Cache[T any] struct {
	m      sync.Map
	ttl    time.Duration
	loader Loader[T]
}

type entry[T any] struct {
	mx    sync.Mutex
	value T
	ts    time.Time
}

func NewWithTTL[T any](ttl time.Duration, loader Loader[T]) *Cache[T] {
	return &Cache[T]{
		m:      sync.Map{},
		ttl:    ttl,
		loader: loader,
	}
}

func (c *Cache[T]) Clean() {
	c.m.Range(func(key, value any) bool {
		e := value.(*entry[T])

		if !e.mx.TryLock() {
			return true
		}

		defer e.mx.Unlock()

		if e.ts.IsZero() || time.Since(e.ts) > c.ttl {
			c.m.Delete(key)
		}

		return true
	})
}

func (c *Cache[T]) Load(ctx context.Context, key string) (T, bool, error) {
	var e *entry[T]

	if v, ok := c.m.Load(key); ok {
		e = v.(*entry[T])
	} else {
		v1, _ := c.m.LoadOrStore(key, new(entry[T]))
		e = v1.(*entry[T])
	}

	e.mx.Lock()
	defer e.mx.Unlock()

	if !e.ts.IsZero() && time.Since(e.ts) <= c.ttl {
		return e.value, true, nil
	}

	v, ok, err := c.loader(ctx, key)
	if err != nil || !ok {
		var zero T
		e.value = zero
		e.ts = time.Time{}

		return zero, false, err
	}

	e.value = v
	e.ts = time.Now()

	return v, true, nil
}
