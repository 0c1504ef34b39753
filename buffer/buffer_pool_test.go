package buffer

import (
	"math/rand"
	"os"
	"testing"

	"bptreeidx/disk"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestPool(t *testing.T, poolSize int) (*BufferPool, *disk.Manager) {
	filename := uuid.New().String()
	dm, err := disk.Create(filename)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(filename) })
	return NewBufferPool(dm, poolSize), dm
}

// TestBufferPool_EvictsDirtyVictim_WritesItToDisk forces every frame of a
// two-frame pool to be reused many times over, so eviction runs on every
// AllocPage past the second. It checks that a page's dirty bytes survive
// being evicted and later read back.
func TestBufferPool_EvictsDirtyVictim_WritesItToDisk(t *testing.T) {
	b, _ := openTestPool(t, 2)

	const numPages = 20
	want := make(map[disk.PageID][]byte, numPages)

	for i := 0; i < numPages; i++ {
		pid, p, err := b.AllocPage()
		require.NoError(t, err)

		payload := make([]byte, disk.PageSize)
		rand.Read(payload)
		copy(p.GetData(), payload)
		want[pid] = payload

		require.NoError(t, b.UnpinPage(pid, true))
	}

	for pid, payload := range want {
		p, err := b.ReadPage(pid)
		require.NoError(t, err)
		assert.Equal(t, payload, p.GetData(), "page %d did not round-trip through eviction", pid)
		require.NoError(t, b.UnpinPage(pid, false))
	}
}

// TestBufferPool_PinnedFrameIsNeverChosenAsVictim keeps the first page of a
// one-frame pool pinned and checks that AllocPage, which has nowhere else
// to put a new page, fails instead of evicting it.
func TestBufferPool_PinnedFrameIsNeverChosenAsVictim(t *testing.T) {
	b, _ := openTestPool(t, 1)

	_, _, err := b.AllocPage()
	require.NoError(t, err)

	_, _, err = b.AllocPage()
	assert.Error(t, err)
}

// TestBufferPool_UnpinClean_DoesNotFlushOnEviction checks that a page
// unpinned as clean is evicted without ever being written back: the
// underlying file, which AllocPage never extends on its own, still has
// nothing at that offset once the page is gone from the pool.
func TestBufferPool_UnpinClean_DoesNotFlushOnEviction(t *testing.T) {
	b, dm := openTestPool(t, 1)

	pid, p, err := b.AllocPage()
	require.NoError(t, err)
	for i := range p.GetData() {
		p.GetData()[i] = 0xFF
	}
	require.NoError(t, b.UnpinPage(pid, false))

	// second AllocPage evicts pid's frame; since it was unpinned clean,
	// frameFor must not have written it back first.
	_, _, err = b.AllocPage()
	require.NoError(t, err)

	_, err = dm.ReadPage(pid)
	assert.Error(t, err, "a clean eviction must not have flushed pid to disk")
}
