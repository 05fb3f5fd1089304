package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

// brokenStore fails every operation, standing in for an unreachable backend.
type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (*engine.UserPracticeState, error) {
	return nil, errors.New("backend unreachable")
}
func (brokenStore) Save(context.Context, string, *engine.UserPracticeState) error {
	return errors.New("backend unreachable")
}
func (brokenStore) Close() error { return nil }

func TestAdapterFallsBackToCache(t *testing.T) {
	cache, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	adapter := NewAdapter(brokenStore{}, cache, nil)

	want := testState("alice")
	assert.True(t, adapter.Save(ctx, "alice", want), "cache write should still land")

	got := adapter.Load(ctx, "alice")
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.UserID)
}

func TestAdapterPrefersPrimary(t *testing.T) {
	dir := t.TempDir()
	primary, err := NewFileStore(dir)
	require.NoError(t, err)
	cache, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	fromPrimary := testState("bob")
	fromPrimary.Subtopic("Strings: Slicing").Baseline = 99
	require.NoError(t, primary.Save(ctx, "bob", fromPrimary))

	stale := testState("bob")
	stale.Subtopic("Strings: Slicing").Baseline = 10
	require.NoError(t, cache.Save(ctx, "bob", stale))

	adapter := NewAdapter(primary, cache, nil)
	got := adapter.Load(ctx, "bob")
	require.NotNil(t, got)
	assert.Equal(t, 99.0, got.Subtopic("Strings: Slicing").Baseline)
}

func TestAdapterLoadNeverErrors(t *testing.T) {
	adapter := NewAdapter(brokenStore{}, brokenStore{}, nil)
	got := adapter.Load(context.Background(), "alice")
	assert.Nil(t, got, "total outage reads as cold start")
}

func TestAdapterSaveReportsTotalFailure(t *testing.T) {
	adapter := NewAdapter(brokenStore{}, brokenStore{}, nil)
	saved := adapter.Save(context.Background(), "alice", testState("alice"))
	assert.False(t, saved)
}

func TestAdapterPrimaryMissFallsThrough(t *testing.T) {
	primary, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	cache, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, "carol", testState("carol")))

	adapter := NewAdapter(primary, cache, nil)
	got := adapter.Load(ctx, "carol")
	require.NotNil(t, got)
	assert.Equal(t, "carol", got.UserID)
}

// hangingStore blocks until the call context is cancelled.
type hangingStore struct{}

func (hangingStore) Load(ctx context.Context, _ string) (*engine.UserPracticeState, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (hangingStore) Save(ctx context.Context, _ string, _ *engine.UserPracticeState) error {
	<-ctx.Done()
	return ctx.Err()
}
func (hangingStore) Close() error { return nil }

func TestAdapterTimeoutBoundsBackendCalls(t *testing.T) {
	adapter := NewAdapter(hangingStore{}, nil, nil)
	adapter.Timeout = 10 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.Nil(t, adapter.Load(context.Background(), "alice"))
		assert.False(t, adapter.Save(context.Background(), "alice", testState("alice")))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("adapter calls did not respect the configured timeout")
	}
}

func TestAdapterNilStores(t *testing.T) {
	adapter := NewAdapter(nil, nil, nil)
	ctx := context.Background()

	assert.Nil(t, adapter.Load(ctx, "alice"))
	assert.False(t, adapter.Save(ctx, "alice", testState("alice")))
	assert.NoError(t, adapter.Close())
}
