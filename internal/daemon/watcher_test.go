package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForTrigger(t *testing.T, trigger <-chan string, timeout time.Duration) string {
	t.Helper()
	select {
	case reason := <-trigger:
		return reason
	case <-time.After(timeout):
		t.Fatal("timed out waiting for watcher trigger")
		return ""
	}
}

func TestSourceWatcher_FiresAfterChange(t *testing.T) {
	root := t.TempDir()
	trigger := make(chan string, 1)

	sw, err := newSourceWatcher(root, 50*time.Millisecond, trigger)
	require.NoError(t, err)
	defer sw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sw.Watch(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "post.md"), []byte("# hi"), 0o644))

	reason := waitForTrigger(t, trigger, 5*time.Second)
	require.Equal(t, "source-change", reason)
}

func TestSourceWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	trigger := make(chan string, 8)

	sw, err := newSourceWatcher(root, 100*time.Millisecond, trigger)
	require.NoError(t, err)
	defer sw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sw.Watch(ctx)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "burst.md")
		require.NoError(t, os.WriteFile(name, []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForTrigger(t, trigger, 5*time.Second)

	// The burst finished well inside one debounce window, so no second
	// trigger should follow.
	select {
	case <-trigger:
		t.Fatal("burst produced more than one trigger")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSourceWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	trigger := make(chan string, 1)

	sw, err := newSourceWatcher(root, 50*time.Millisecond, trigger)
	require.NoError(t, err)
	defer sw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sw.Watch(ctx)

	sub := filepath.Join(root, "drafts")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitForTrigger(t, trigger, 5*time.Second)

	// A write inside the new directory must also trigger.
	require.NoError(t, os.WriteFile(filepath.Join(sub, "new.md"), []byte("# new"), 0o644))
	waitForTrigger(t, trigger, 5*time.Second)
}
