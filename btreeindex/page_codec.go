package btreeindex

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"bptreeidx/common"
	"bptreeidx/disk"
	"bptreeidx/relation"
)

const (
	// InternalFanout (F) is the max number of children an internal node
	// holds; F-1 keys route between them. Chosen so one node fills
	// exactly one disk.PageSize page.
	InternalFanout = 511

	// LeafFanout (L) is the max number of (key, rid) entries a leaf
	// holds, for the same reason.
	LeafFanout = 255

	relationNameSize = 32
)

// MetaPID is the page id of the single meta page every index file has —
// always the file's first page.
const MetaPID disk.PageID = 0

// AttrType tags the type of the indexed attribute. This index only ever
// indexes 32-bit integers, but the field is carried on the meta page to
// catch an accidental reopen against the wrong relation.
type AttrType int32

const IntegerType AttrType = 0

// metaLayout is the on-disk shape of the file's first page.
type metaLayout struct {
	RelationName   [relationNameSize]byte
	AttrByteOffset int32
	AttrType       AttrType
	RootPageNo     disk.PageID
}

func encodeRelationName(name string) [relationNameSize]byte {
	var out [relationNameSize]byte
	copy(out[:], name)
	return out
}

func decodeRelationName(b [relationNameSize]byte) string {
	n := bytes.IndexByte(b[:], 0)
	if n < 0 {
		n = len(b)
	}
	return string(b[:n])
}

// internalLayout is the on-disk shape of an internal node: level, an
// explicit live-key count (rather than a sentinel zero key), then the
// fixed key/child arrays.
type internalLayout struct {
	Level    int32
	Count    int32
	Keys     [InternalFanout - 1]int32
	Children [InternalFanout]disk.PageID
}

// leafLayout is the on-disk shape of a leaf node.
type leafLayout struct {
	Count    int32
	RightSib disk.PageID
	Keys     [LeafFanout]int32
	Rids     [LeafFanout]relation.RecordId
}

// TODO: binary.Write/Read walk these layouts by reflection on every node
// touch; fine at this index's scale, but a hand-rolled byte-offset codec
// would be the first thing to reach for if this ever shows up in profiles.

func writeMetaPage(page []byte, m metaLayout) {
	buf := bytes.NewBuffer(make([]byte, 0, disk.PageSize))
	err := binary.Write(buf, binary.BigEndian, m)
	common.PanicIfErr(wrapCodecErr("encode meta page", err))
	copy(page, buf.Bytes())
}

func readMetaPage(page []byte) metaLayout {
	var m metaLayout
	err := binary.Read(bytes.NewReader(page), binary.BigEndian, &m)
	common.PanicIfErr(wrapCodecErr("decode meta page", err))
	return m
}

func writeInternal(page []byte, n internalLayout) {
	buf := bytes.NewBuffer(make([]byte, 0, disk.PageSize))
	err := binary.Write(buf, binary.BigEndian, n)
	common.PanicIfErr(wrapCodecErr("encode internal node", err))
	copy(page, buf.Bytes())
}

func readInternal(page []byte) internalLayout {
	var n internalLayout
	err := binary.Read(bytes.NewReader(page), binary.BigEndian, &n)
	common.PanicIfErr(wrapCodecErr("decode internal node", err))
	return n
}

func writeLeaf(page []byte, n leafLayout) {
	buf := bytes.NewBuffer(make([]byte, 0, disk.PageSize))
	err := binary.Write(buf, binary.BigEndian, n)
	common.PanicIfErr(wrapCodecErr("encode leaf node", err))
	copy(page, buf.Bytes())
}

func readLeaf(page []byte) leafLayout {
	var n leafLayout
	err := binary.Read(bytes.NewReader(page), binary.BigEndian, &n)
	common.PanicIfErr(wrapCodecErr("decode leaf node", err))
	return n
}

// wrapCodecErr returns nil unchanged, so common.PanicIfErr stays a no-op
// on the success path at every call site above.
func wrapCodecErr(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("btreeindex: %s: %w", what, err)
}
