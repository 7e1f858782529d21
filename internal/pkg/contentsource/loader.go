package contentsource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Origin names the layer that produced a payload.
type Origin string

const (
	OriginCache    Origin = "cache"
	OriginRemote   Origin = "remote"
	OriginSnapshot Origin = "snapshot"
	OriginSample   Origin = "sample"
)

// ErrNotFound is returned when no layer can produce the requested content.
var ErrNotFound = errors.New("content not available from any source")

// KV is the hot cache in front of the loader. A miss is (value="", ok=false)
// with a nil error; errors mean the cache backend itself is unhealthy.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Remote fetches content from the upstream source of truth.
type Remote interface {
	Fetch(ctx context.Context, key string) (string, error)
}

// Snapshot is the durable offline copy written on every successful remote
// fetch and read when the remote is unreachable.
type Snapshot interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}

// SampleFunc resolves a key to bundled fallback content shipped with the
// binary. It is the last rung of the ladder.
type SampleFunc func(key string) (string, bool)

// Result is a resolved payload plus the layer it came from, so callers can
// surface degraded-mode notices to the user.
type Result struct {
	Payload string
	Origin  Origin
}

// Config wires the loader's layers. Cache, Snapshot and Sample are optional;
// a nil layer is skipped.
type Config struct {
	Name          string
	Cache         KV
	Remote        Remote
	Snapshot      Snapshot
	Sample        SampleFunc
	CacheTTL      time.Duration
	RemoteTimeout time.Duration
}

// Loader resolves content through a fixed ladder: cache, remote, snapshot,
// bundled sample. Once the remote fails it is not retried for the rest of
// the process lifetime; restarts probe it again.
type Loader struct {
	name          string
	cache         KV
	remote        Remote
	snapshot      Snapshot
	sample        SampleFunc
	cacheTTL      time.Duration
	remoteTimeout time.Duration
	remoteDown    atomic.Bool
}

const (
	defaultCacheTTL      = 6 * time.Hour
	defaultRemoteTimeout = 5 * time.Second
)

func NewLoader(cfg Config) *Loader {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = defaultRemoteTimeout
	}
	return &Loader{
		name:          cfg.Name,
		cache:         cfg.Cache,
		remote:        cfg.Remote,
		snapshot:      cfg.Snapshot,
		sample:        cfg.Sample,
		cacheTTL:      cfg.CacheTTL,
		remoteTimeout: cfg.RemoteTimeout,
	}
}

// RemoteDown reports whether the remote has been written off for this
// process.
func (l *Loader) RemoteDown() bool {
	return l.remoteDown.Load()
}

// Load walks the ladder until a layer produces content.
func (l *Loader) Load(ctx context.Context, key string) (Result, error) {
	if l.cache != nil {
		value, ok, err := l.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("source", l.name).Str("key", key).Msg("content cache unavailable")
		} else if ok {
			return Result{Payload: value, Origin: OriginCache}, nil
		}
	}

	if l.remote != nil && !l.remoteDown.Load() {
		fetchCtx, cancel := context.WithTimeout(ctx, l.remoteTimeout)
		value, err := l.remote.Fetch(fetchCtx, key)
		cancel()
		if err == nil {
			l.fill(ctx, key, value)
			return Result{Payload: value, Origin: OriginRemote}, nil
		}
		// One failure retires the remote until restart, so every later
		// request degrades immediately instead of waiting out the timeout.
		l.remoteDown.Store(true)
		log.Warn().Err(err).Str("source", l.name).Str("key", key).Msg("remote content source retired for this process")
	}

	if l.snapshot != nil {
		value, err := l.snapshot.Load(ctx, key)
		if err == nil {
			return Result{Payload: value, Origin: OriginSnapshot}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("source", l.name).Str("key", key).Msg("content snapshot unavailable")
		}
	}

	if l.sample != nil {
		if value, ok := l.sample(key); ok {
			return Result{Payload: value, Origin: OriginSample}, nil
		}
	}

	return Result{}, ErrNotFound
}

// fill propagates a fresh remote payload into the cache and snapshot.
// Neither write can fail the request.
func (l *Loader) fill(ctx context.Context, key, value string) {
	if l.cache != nil {
		if err := l.cache.Set(ctx, key, value, l.cacheTTL); err != nil {
			log.Warn().Err(err).Str("source", l.name).Str("key", key).Msg("failed to cache content")
		}
	}
	if l.snapshot != nil {
		if err := l.snapshot.Save(ctx, key, value); err != nil {
			log.Warn().Err(err).Str("source", l.name).Str("key", key).Msg("failed to snapshot content")
		}
	}
}
