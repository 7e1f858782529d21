package contentsource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	broken bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return "", false, errors.New("cache down")
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errors.New("cache down")
	}
	m.data[key] = value
	return nil
}

type fakeRemote struct {
	mu    sync.Mutex
	data  map[string]string
	fail  bool
	calls int
}

func (f *fakeRemote) Fetch(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return "", errors.New("remote unreachable")
	}
	value, ok := f.data[key]
	if !ok {
		return "", errors.New("not found upstream")
	}
	return value, nil
}

type memSnapshot struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemSnapshot() *memSnapshot {
	return &memSnapshot{data: make(map[string]string)}
}

func (m *memSnapshot) Load(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *memSnapshot) Save(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestLoadFromRemoteFillsCacheAndSnapshot(t *testing.T) {
	kv := newMemKV()
	remote := &fakeRemote{data: map[string]string{"gn/1": `{"verses":[]}`}}
	snap := newMemSnapshot()
	loader := NewLoader(Config{Name: "bible", Cache: kv, Remote: remote, Snapshot: snap, Sample: nil})

	result, err := loader.Load(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.Equal(t, OriginRemote, result.Origin)
	assert.Equal(t, `{"verses":[]}`, result.Payload)

	// Both fallback layers were filled on the way out.
	cached, ok, err := kv.Get(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"verses":[]}`, cached)

	saved, err := snap.Load(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.Equal(t, `{"verses":[]}`, saved)
}

func TestLoadPrefersCache(t *testing.T) {
	kv := newMemKV()
	require.NoError(t, kv.Set(context.Background(), "gn/1", "cached", time.Minute))
	remote := &fakeRemote{data: map[string]string{"gn/1": "fresh"}}
	loader := NewLoader(Config{Name: "bible", Cache: kv, Remote: remote})

	result, err := loader.Load(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, result.Origin)
	assert.Equal(t, "cached", result.Payload)
	assert.Zero(t, remote.calls)
}

func TestRemoteFailureFallsBackToSnapshot(t *testing.T) {
	remote := &fakeRemote{fail: true}
	snap := newMemSnapshot()
	require.NoError(t, snap.Save(context.Background(), "gn/1", "offline copy"))
	loader := NewLoader(Config{Name: "bible", Cache: newMemKV(), Remote: remote, Snapshot: snap})

	result, err := loader.Load(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.Equal(t, OriginSnapshot, result.Origin)
	assert.Equal(t, "offline copy", result.Payload)
	assert.True(t, loader.RemoteDown())
}

func TestRemoteRetiredAfterFirstFailure(t *testing.T) {
	remote := &fakeRemote{fail: true}
	loader := NewLoader(Config{Name: "bible", Remote: remote, Sample: func(key string) (string, bool) {
		return "sample", true
	}})

	for i := 0; i < 3; i++ {
		result, err := loader.Load(context.Background(), "gn/1")
		require.NoError(t, err)
		assert.Equal(t, OriginSample, result.Origin)
	}
	assert.Equal(t, 1, remote.calls, "remote must not be retried within the same process")
}

func TestSampleIsLastResort(t *testing.T) {
	remote := &fakeRemote{fail: true}
	loader := NewLoader(Config{
		Name:     "bible",
		Cache:    newMemKV(),
		Remote:   remote,
		Snapshot: newMemSnapshot(),
		Sample: func(key string) (string, bool) {
			if key == "gn/1" {
				return "bundled", true
			}
			return "", false
		},
	})

	result, err := loader.Load(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.Equal(t, OriginSample, result.Origin)
	assert.Equal(t, "bundled", result.Payload)

	_, err = loader.Load(context.Background(), "ex/1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBrokenCacheDoesNotBlockRemote(t *testing.T) {
	kv := newMemKV()
	kv.broken = true
	remote := &fakeRemote{data: map[string]string{"gn/1": "fresh"}}
	loader := NewLoader(Config{Name: "bible", Cache: kv, Remote: remote})

	result, err := loader.Load(context.Background(), "gn/1")
	require.NoError(t, err)
	assert.Equal(t, OriginRemote, result.Origin)
	assert.Equal(t, "fresh", result.Payload)
	assert.False(t, loader.RemoteDown())
}
