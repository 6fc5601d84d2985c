// Package cache materializes model artifacts from the remote blob store onto
// local disk. Ensure is idempotent (present file = immediate hit), downloads
// are atomic (temp + rename), and concurrent misses for the same artifact
// collapse onto a single in-flight fetch. Remote artifacts are immutable per
// key, so there is no freshness checking; Invalidate forces a re-download for
// deployed-model updates.
package cache

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"powerd/internal/common/fsutil"
	"powerd/internal/store"
)

// Ref identifies one artifact: the model it belongs to and its storage key.
type Ref struct {
	ModelID string
	Key     string
}

// fileName is the on-disk name: one file per model, keeping the key's
// extension so artifact files remain recognizable.
func (r Ref) fileName() string {
	return r.ModelID + filepath.Ext(r.Key)
}

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
)

// Config encapsulates all tunables for Cache construction.
type Config struct {
	// Dir is the local persistent artifact directory; created if absent.
	Dir string
	// Store is the remote blob store artifacts are fetched from.
	Store store.Store
	// MaxAttempts bounds fetch attempts per Ensure-triggered download.
	MaxAttempts int
	// InitialBackoff is the first retry delay; later delays grow exponentially.
	InitialBackoff time.Duration
}

// Cache is the process-wide artifact cache. It is safe for concurrent use.
type Cache struct {
	dir            string
	store          store.Store
	maxAttempts    int
	initialBackoff time.Duration

	mu       sync.Mutex
	inflight map[string]*fetch // keyed by model id; at most one fetch per key
}

// fetch tracks one in-flight download; waiters block on done.
type fetch struct {
	done chan struct{}
	path string
	err  error
}

// NewWithConfig constructs a Cache from Config, applying defaults.
func NewWithConfig(cfg Config) (*Cache, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	c := &Cache{
		dir:            cfg.Dir,
		store:          cfg.Store,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		inflight:       make(map[string]*fetch),
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = defaultInitialBackoff
	}
	return c, nil
}

// Dir returns the local artifact directory.
func (c *Cache) Dir() string { return c.dir }

// LocalPath returns where ref's artifact lives (or will live) on disk.
func (c *Cache) LocalPath(ref Ref) string {
	return filepath.Join(c.dir, ref.fileName())
}

// Ensure makes ref's artifact present on local disk and returns its path.
// A present file returns immediately. On a miss, exactly one download runs
// per ref no matter how many callers arrive; the others wait on it. ctx only
// bounds this caller's wait. An in-flight download runs to completion in the
// background so later requests still benefit.
func (c *Cache) Ensure(ctx context.Context, ref Ref) (string, error) {
	path := c.LocalPath(ref)
	if fsutil.PathExists(path) {
		return path, nil
	}

	c.mu.Lock()
	// Re-check under the lock: a fetch may have completed since the fast path.
	if fsutil.PathExists(path) {
		c.mu.Unlock()
		return path, nil
	}
	f, ok := c.inflight[ref.ModelID]
	if !ok {
		f = &fetch{done: make(chan struct{})}
		c.inflight[ref.ModelID] = f
		go c.download(ref, path, f)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.path, f.err
	case <-ctx.Done():
		return "", ErrArtifactUnavailable(ref.ModelID, ctx.Err())
	}
}

// download runs in the background for one ref. Transient store errors are
// retried with exponential backoff up to maxAttempts; a missing key is
// permanent and not retried.
func (c *Cache) download(ref Ref, path string, f *fetch) {
	defer func() {
		c.mu.Lock()
		delete(c.inflight, ref.ModelID)
		c.mu.Unlock()
		close(f.done)
	}()

	start := time.Now()
	op := func() error {
		b, err := c.store.Get(context.Background(), ref.Key)
		if err != nil {
			if store.IsNotFound(err) {
				return backoff.Permanent(err)
			}
			log.Printf("cache event=fetch_retry model=%q key=%q err=%v", ref.ModelID, ref.Key, err)
			return err
		}
		return fsutil.WriteFileAtomic(path, b, 0o644)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	bo.MaxElapsedTime = 0 // attempts are bounded by count, not wall clock
	if err := backoff.Retry(op, backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1))); err != nil {
		log.Printf("cache event=fetch_failed model=%q key=%q attempts=%d err=%v", ref.ModelID, ref.Key, c.maxAttempts, err)
		fetchesTotal.WithLabelValues(ref.ModelID, "error").Inc()
		f.err = ErrArtifactUnavailable(ref.ModelID, err)
		return
	}
	log.Printf("cache event=fetch_done model=%q key=%q dur_ms=%d", ref.ModelID, ref.Key, time.Since(start)/time.Millisecond)
	fetchesTotal.WithLabelValues(ref.ModelID, "ok").Inc()
	f.path = path
}

// Invalidate removes ref's local file so the next Ensure re-downloads it.
// If a fetch for ref is in flight, Invalidate waits for it to settle first
// so a late rename cannot resurrect the removed file.
func (c *Cache) Invalidate(ref Ref) error {
	c.mu.Lock()
	for {
		f, ok := c.inflight[ref.ModelID]
		if !ok {
			break
		}
		c.mu.Unlock()
		<-f.done
		c.mu.Lock()
	}
	defer c.mu.Unlock()
	if err := os.Remove(c.LocalPath(ref)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
