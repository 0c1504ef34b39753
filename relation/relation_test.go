package relation

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecordSize = 16

func encodeRow(key int32) []byte {
	row := make([]byte, testRecordSize)
	binary.BigEndian.PutUint32(row[4:], uint32(key))
	return row
}

func TestRelation_InsertThenScan_VisitsEveryRecordOnce(t *testing.T) {
	name := uuid.New().String() + ".rel"
	defer os.Remove(name)

	rel, err := Create(name, testRecordSize)
	require.NoError(t, err)

	const n = 2000
	for i := 0; i < n; i++ {
		_, err := rel.InsertRecord(encodeRow(int32(i)))
		require.NoError(t, err)
	}

	scan := rel.NewScan()
	seen := make([]int32, 0, n)
	for {
		_, err := scan.ScanNext()
		if err == ErrEndOfFile {
			break
		}
		require.NoError(t, err)
		seen = append(seen, int32(binary.BigEndian.Uint32(scan.GetRecord()[4:])))
	}

	require.Len(t, seen, n)
	for i, k := range seen {
		assert.Equal(t, int32(i), k)
	}
}

func TestRelation_ReopenedFile_RecoversRowCount(t *testing.T) {
	name := uuid.New().String() + ".rel"
	defer os.Remove(name)

	rel, err := Create(name, testRecordSize)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := rel.InsertRecord(encodeRow(int32(i)))
		require.NoError(t, err)
	}
	require.NoError(t, rel.Close())

	reopened, err := Open(name, testRecordSize)
	require.NoError(t, err)

	scan := reopened.NewScan()
	count := 0
	for {
		if _, err := scan.ScanNext(); err == ErrEndOfFile {
			break
		}
		count++
	}
	assert.Equal(t, 10, count)
}

func TestRelation_RecordIdsEncodePageAndSlot(t *testing.T) {
	name := uuid.New().String() + ".rel"
	defer os.Remove(name)

	rel, err := Create(name, testRecordSize)
	require.NoError(t, err)

	rowsPerPage := rel.rowsPerPage
	seenPages := map[int32]bool{}
	for i := int32(0); i < rowsPerPage*3; i++ {
		rid, err := rel.InsertRecord(encodeRow(i))
		require.NoError(t, err)
		assert.Equal(t, i/rowsPerPage, rid.PageNum)
		assert.Equal(t, i%rowsPerPage, rid.SlotNum)
		seenPages[rid.PageNum] = true
	}
	assert.Len(t, seenPages, 3)
}
