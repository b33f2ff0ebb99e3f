package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewValidation(t *testing.T) {
	_, err := New(Config{OnChange: func() {}})
	assert.Error(t, err)
	_, err = New(Config{StorePath: "x.db"})
	assert.Error(t, err)
}

func TestDebounceDelayBounds(t *testing.T) {
	tests := []struct {
		delay        time.Duration
		wantDebounce time.Duration
		wantTick     time.Duration
	}{
		{0, defaultDebounce, defaultDebounce / 2},
		{-time.Second, defaultDebounce, defaultDebounce / 2},
		{time.Nanosecond, time.Nanosecond, minTick},
		{time.Millisecond, time.Millisecond, minTick},
		{time.Second, time.Second, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		w, err := New(Config{StorePath: "a.db", DebounceDelay: tt.delay, OnChange: func() {}})
		require.NoError(t, err)
		assert.Equal(t, tt.wantDebounce, w.debounceDelay, "delay %v", tt.delay)
		assert.Equal(t, tt.wantTick, w.tickInterval(), "delay %v", tt.delay)
	}
}

func TestStartWithTinyDebounceDelay(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := New(Config{StorePath: filepath.Join(dir, "a.db"), DebounceDelay: time.Nanosecond, OnChange: func() {}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NotPanics(t, func() { _ = w.Start(ctx) })
}

func TestIsStoreFile(t *testing.T) {
	w, err := New(Config{StorePath: "/data/favs/activities.db", OnChange: func() {}})
	require.NoError(t, err)

	tests := map[string]bool{
		"/data/favs/activities.db":         true,
		"/data/favs/activities.db-wal":     true,
		"/data/favs/activities.db-journal": true,
		"/data/favs/activities.db-shm":     false,
		"/data/favs/other.db":              false,
		"/data/other/activities.db":        false,
	}
	for name, want := range tests {
		assert.Equal(t, want, w.isStoreFile(name), name)
	}
}

func TestReadyDebounces(t *testing.T) {
	w, err := New(Config{StorePath: "a.db", DebounceDelay: time.Second, OnChange: func() {}})
	require.NoError(t, err)

	now := time.Now()
	assert.False(t, w.ready(now), "nothing pending")

	w.pending = now
	assert.False(t, w.ready(now.Add(500*time.Millisecond)))
	assert.True(t, w.ready(now.Add(time.Second)))
	assert.False(t, w.ready(now.Add(2*time.Second)), "a change fires once")
}

func TestWatcherReportsWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	store := filepath.Join(dir, "activities.db")
	require.NoError(t, os.WriteFile(store, nil, 0o644))

	changes := make(chan struct{}, 8)
	w, err := New(Config{
		StorePath:     store,
		DebounceDelay: 20 * time.Millisecond,
		OnChange:      func() { changes <- struct{}{} },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Start(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(store+"-wal", []byte("x"), 0o644))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	err = <-errc
	assert.True(t, errors.Is(err, context.Canceled), "Start returned %v", err)
}
