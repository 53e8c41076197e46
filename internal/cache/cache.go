// Package cache provides the read-through caches that sit in front of the
// store for list responses.
package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	applog "spendingtracker/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

type member interface {
	Cleaner
	Purge()
}

// Group is a set of caches over one data source. A write to the source
// invalidates every member at once.
type Group struct {
	members    []member
	generation atomic.Uint64
	loads      singleflight.Group
	log        *applog.Logger
}

// NewGroup returns an empty group logging through logger, or through the
// default logger when logger is nil.
func NewGroup(logger *applog.Logger) *Group {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Group{log: logger.WithComponent(applog.ComponentCache)}
}

// Add registers m. Call before the group is shared.
func (g *Group) Add(m member) {
	g.members = append(g.members, m)
}

// Invalidate empties every member. Loads that started earlier still return
// their result but no longer store it.
func (g *Group) Invalidate() {
	g.generation.Add(1)
	for _, m := range g.members {
		m.Purge()
	}
}

func (g *Group) sweep() int {
	total := 0
	for _, m := range g.members {
		total += m.CleanExpired()
	}
	if total > 0 {
		g.log.Debug("Expired cache entries removed", applog.FieldCount, total)
	}
	return total
}

// StartSweeper drops expired entries every interval. The returned stop
// ends the sweeper and waits for it to exit.
func (g *Group) StartSweeper(interval time.Duration) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.sweep()
			case <-quit:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(quit) })
		<-done
	}
}

// Load returns the value cached under key or fetches it into c. Concurrent
// misses on the same key share one fetch. Keys must be unique within g.
// hit reports whether the value came from c.
func Load[T any](g *Group, c Cache[T], key string, fetch func() (T, error)) (v T, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	gen := g.generation.Load()
	res, err, _ := g.loads.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		v, err := fetch()
		if err == nil && g.generation.Load() == gen {
			c.Set(key, v)
		}
		return v, err
	})
	if err != nil {
		return v, false, err
	}
	return res.(T), false, nil
}
