package disk

import (
	"bytes"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenMissingFile_ReturnsErrFileNotFound(t *testing.T) {
	_, err := Open(uuid.New().String())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestManager_AllocatePage_StartsAtFirstPageNo(t *testing.T) {
	filename := uuid.New().String()
	dm, err := Create(filename)
	require.NoError(t, err)
	defer os.Remove(filename)
	defer dm.Close()

	assert.Equal(t, PageID(0), dm.FirstPageNo())
	assert.Equal(t, PageID(0), dm.AllocatePage())
	assert.Equal(t, PageID(1), dm.AllocatePage())
	assert.Equal(t, PageID(2), dm.AllocatePage())
}

func TestManager_WriteThenReadPage_RoundTrips(t *testing.T) {
	filename := uuid.New().String()
	dm, err := Create(filename)
	require.NoError(t, err)
	defer os.Remove(filename)
	defer dm.Close()

	pid := dm.AllocatePage()
	want := bytes.Repeat([]byte{0xAB}, PageSize)
	require.NoError(t, dm.WritePage(pid, want))

	got, err := dm.ReadPage(pid)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestManager_ReopenedFile_RecoversLastPageID(t *testing.T) {
	filename := uuid.New().String()
	dm, err := Create(filename)
	require.NoError(t, err)
	defer os.Remove(filename)

	for i := 0; i < 5; i++ {
		pid := dm.AllocatePage()
		require.NoError(t, dm.WritePage(pid, bytes.Repeat([]byte{byte(i)}, PageSize)))
	}
	require.NoError(t, dm.Flush())
	require.NoError(t, dm.Close())

	reopened, err := Open(filename)
	require.NoError(t, err)
	defer reopened.Close()

	next := reopened.AllocatePage()
	assert.Equal(t, PageID(5), next)

	got, err := reopened.ReadPage(PageID(3))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{3}, PageSize), got)
}
