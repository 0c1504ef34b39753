package btreeindex

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPopulatedIndex(t *testing.T, n int32) *Index {
	relationName := uuid.New().String()
	indexName, idx, err := Open(relationName, 0, IntegerType, 8, nil)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(indexName) })

	for i := int32(0); i < n; i++ {
		require.NoError(t, idx.InsertEntry(i, ridFor(i)))
	}
	return idx
}

func TestStartScan_RejectsBadOpcodes(t *testing.T) {
	idx := newPopulatedIndex(t, 10)
	defer idx.Close()

	assert.ErrorIs(t, idx.StartScan(0, LT, 10, LTE), ErrBadOpcodes)
	assert.ErrorIs(t, idx.StartScan(0, GTE, 10, GTE), ErrBadOpcodes)
}

func TestStartScan_RejectsInvertedRange(t *testing.T) {
	idx := newPopulatedIndex(t, 10)
	defer idx.Close()

	assert.ErrorIs(t, idx.StartScan(10, GTE, 0, LTE), ErrBadScanRange)
}

func TestScanNext_WithoutStartScan_FailsNotInitialized(t *testing.T) {
	idx := newPopulatedIndex(t, 10)
	defer idx.Close()

	_, err := idx.ScanNext()
	assert.ErrorIs(t, err, ErrScanNotInitialized)
}

func TestEndScan_WithoutStartScan_FailsNotInitialized(t *testing.T) {
	idx := newPopulatedIndex(t, 10)
	defer idx.Close()

	assert.ErrorIs(t, idx.EndScan(), ErrScanNotInitialized)
}

func TestScan_ExclusiveBounds_ExcludeBoundaryKeys(t *testing.T) {
	idx := newPopulatedIndex(t, 20)
	defer idx.Close()

	require.NoError(t, idx.StartScan(5, GT, 15, LT))
	var got []int32
	for {
		rid, err := idx.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		got = append(got, rid.PageNum)
	}
	require.NoError(t, idx.EndScan())

	assert.Equal(t, []int32{6, 7, 8, 9, 10, 11, 12, 13, 14}, got)
}

func TestScan_PastCompletion_KeepsReturningIndexScanCompleted(t *testing.T) {
	idx := newPopulatedIndex(t, 5)
	defer idx.Close()

	require.NoError(t, idx.StartScan(0, GTE, 1, LTE))
	_, err := idx.ScanNext()
	require.NoError(t, err)
	_, err = idx.ScanNext()
	require.NoError(t, err)

	_, err = idx.ScanNext()
	assert.ErrorIs(t, err, ErrIndexScanCompleted)
	_, err = idx.ScanNext()
	assert.ErrorIs(t, err, ErrIndexScanCompleted)

	require.NoError(t, idx.EndScan())
}

func TestStartScan_WhileAlreadyActive_EndsThePreviousOne(t *testing.T) {
	idx := newPopulatedIndex(t, 50)
	defer idx.Close()

	require.NoError(t, idx.StartScan(0, GTE, 10, LTE))
	_, err := idx.ScanNext()
	require.NoError(t, err)

	require.NoError(t, idx.StartScan(40, GTE, 45, LTE))
	rid, err := idx.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, int32(40), rid.PageNum)

	require.NoError(t, idx.EndScan())
}

func TestStartScan_NoKeySatisfiesRange_FailsNoSuchKeyFound(t *testing.T) {
	idx := newPopulatedIndex(t, 10)
	defer idx.Close()

	err := idx.StartScan(1000, GTE, 2000, LTE)
	assert.ErrorIs(t, err, ErrNoSuchKeyFound)
}
