package btreeindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"bptreeidx/buffer"
	"bptreeidx/disk"
	"bptreeidx/relation"
)

// Index is a B+Tree index over a single fixed-offset 32-bit integer
// attribute of one relation, backed by its own paged file and buffer pool.
type Index struct {
	pool buffer.Pool
	disk disk.IDiskManager

	indexName      string
	attrByteOffset int32
	attrType       AttrType
	rootPageNum    disk.PageID

	scan scanState
}

// IndexName is the canonical on-disk file name for an index over
// relationName's attribute at attrByteOffset.
func IndexName(relationName string, attrByteOffset int32) string {
	return fmt.Sprintf("%s.%d", relationName, attrByteOffset)
}

// Open opens the index file for (relationName, attrByteOffset), creating
// and bulk-building it from rel if it does not already exist. poolSize is
// the number of frames its buffer pool gets.
//
// Splitting the buffer pool per index, rather than sharing one pool across
// every open file, is a deliberate simplification: nothing in this
// repository ever has two indexes open over the same pool, and a 1:1
// pool-to-file wiring is what buffer.BufferPool already provides.
func Open(relationName string, attrByteOffset int32, attrType AttrType, poolSize int, rel *relation.Relation) (indexName string, idx *Index, err error) {
	indexName = IndexName(relationName, attrByteOffset)

	dm, openErr := disk.Open(indexName)
	created := false
	if errors.Is(openErr, disk.ErrFileNotFound) {
		dm, openErr = disk.Create(indexName)
		created = true
	}
	if openErr != nil {
		return indexName, nil, fmt.Errorf("btreeindex: open %s: %w", indexName, openErr)
	}

	idx = &Index{
		pool:           buffer.NewBufferPool(dm, poolSize),
		disk:           dm,
		indexName:      indexName,
		attrByteOffset: attrByteOffset,
		attrType:       attrType,
	}

	if created {
		if err := idx.initEmpty(relationName); err != nil {
			return indexName, nil, err
		}
		if rel != nil {
			if err := idx.buildFromRelation(rel); err != nil {
				return indexName, nil, err
			}
		}
	} else {
		if err := idx.loadMeta(relationName); err != nil {
			return indexName, nil, err
		}
	}

	return indexName, idx, nil
}

// initEmpty lays down a fresh meta page, an empty leaf, and a root
// internal node pointing at it. It relies on disk.Manager.AllocatePage
// handing out page ids in order, so the meta page lands at MetaPID.
func (idx *Index) initEmpty(relationName string) error {
	metaPid, metaPg, err := idx.pool.AllocPage()
	if err != nil {
		return err
	}
	if metaPid != MetaPID {
		return fmt.Errorf("btreeindex: expected meta page at id %d, got %d", MetaPID, metaPid)
	}

	leafPid, leafPage, err := idx.pool.AllocPage()
	if err != nil {
		return err
	}
	writeLeaf(leafPage.GetData(), leafLayout{})
	if err := idx.pool.UnpinPage(leafPid, true); err != nil {
		return err
	}

	rootPid, rootPage, err := idx.pool.AllocPage()
	if err != nil {
		return err
	}
	root := internalLayout{Level: 1, Count: 0}
	root.Children[0] = leafPid
	writeInternal(rootPage.GetData(), root)
	// rootPage's AllocPage pin is intentionally never released here: it
	// becomes the permanent root pin (see promoteRoot).

	m := metaLayout{
		RelationName:   encodeRelationName(relationName),
		AttrByteOffset: idx.attrByteOffset,
		AttrType:       idx.attrType,
		RootPageNo:     rootPid,
	}
	writeMetaPage(metaPg.GetData(), m)
	if err := idx.pool.UnpinPage(MetaPID, true); err != nil {
		return err
	}

	idx.rootPageNum = rootPid
	return nil
}

// loadMeta recovers an existing index's root page id from its meta page
// and checks it was built for relationName/attrByteOffset. The name is
// compared as truncated to the meta page's fixed-width field.
func (idx *Index) loadMeta(relationName string) error {
	metaPg, err := idx.pool.ReadPage(MetaPID)
	if err != nil {
		return err
	}
	m := readMetaPage(metaPg.GetData())
	if err := idx.pool.UnpinPage(MetaPID, false); err != nil {
		return err
	}

	if decodeRelationName(m.RelationName) != decodeRelationName(encodeRelationName(relationName)) || m.AttrByteOffset != idx.attrByteOffset {
		return ErrBadIndexInfo
	}

	idx.rootPageNum = m.RootPageNo
	if _, err := idx.pool.ReadPage(idx.rootPageNum); err != nil {
		return err
	}
	return nil
}

// buildFromRelation scans rel end to end, inserting every record's
// attrByteOffset-th int32 field under its record id.
func (idx *Index) buildFromRelation(rel *relation.Relation) error {
	scan := rel.NewScan()
	inserted := 0
	for {
		rid, err := scan.ScanNext()
		if errors.Is(err, relation.ErrEndOfFile) {
			log.Printf("btreeindex: bulk build of %s finished, %d entries", idx.indexName, inserted)
			return nil
		}
		if err != nil {
			return err
		}

		record := scan.GetRecord()
		key := int32(binary.BigEndian.Uint32(record[idx.attrByteOffset:]))
		if err := idx.InsertEntry(key, rid); err != nil {
			return err
		}
		inserted++
	}
}

// Close ends any active scan, drops the permanent root pin, flushes every
// dirty page, and closes the underlying file.
func (idx *Index) Close() error {
	if idx.scan.active {
		if err := idx.EndScan(); err != nil {
			return err
		}
	}
	if err := idx.pool.UnpinPage(idx.rootPageNum, false); err != nil {
		return err
	}
	if err := idx.pool.FlushFile(); err != nil {
		return err
	}
	return idx.disk.Close()
}
