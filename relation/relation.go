// Package relation is a flat file of fixed-width rows that btreeindex's
// bulk build scans. There is no catalog or schema subsystem behind it:
// a row's attribute layout is just an offset the caller already knows,
// and the package exposes only the scan a bulk build needs to walk every
// row once and learn each one's record id.
package relation

import (
	"errors"
	"fmt"
	"io"
	"os"

	"bptreeidx/disk"
)

// ErrEndOfFile is returned by Scan.ScanNext once every record has been
// visited.
var ErrEndOfFile = errors.New("relation: end of file")

// RecordId is the opaque (page number, slot, padding) address of one row.
// btreeindex never interprets it; it only stores and returns it.
type RecordId struct {
	PageNum int32
	SlotNum int32
	Pad     int32 // explicit padding so the struct's encoded size is a round number of bytes
}

// Relation is a flat file of fixed-size rows, grouped into disk.PageSize
// sized pages of rowsPerPage rows each purely for RecordId addressing —
// there is no real page structure or free space management, since nothing
// here is ever updated or deleted.
type Relation struct {
	file        *os.File
	recordSize  int32
	rowsPerPage int32
	count       int64
}

// Create makes a fresh, empty relation file holding fixed recordSize rows.
func Create(name string, recordSize int32) (*Relation, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return newRelation(f, recordSize, 0)
}

// Open opens an existing relation file and recovers its row count from its
// size on disk.
func Open(name string, recordSize int32) (*Relation, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	count := stat.Size() / int64(recordSize)
	return newRelation(f, recordSize, count)
}

func newRelation(f *os.File, recordSize int32, count int64) (*Relation, error) {
	if recordSize <= 0 {
		return nil, fmt.Errorf("relation: record size must be positive, got %d", recordSize)
	}
	rowsPerPage := int32(disk.PageSize) / recordSize
	if rowsPerPage == 0 {
		rowsPerPage = 1
	}
	return &Relation{file: f, recordSize: recordSize, rowsPerPage: rowsPerPage, count: count}, nil
}

// InsertRecord appends data (which must be exactly RecordSize bytes long)
// and returns the RecordId it was stored under.
func (r *Relation) InsertRecord(data []byte) (RecordId, error) {
	if int32(len(data)) != r.recordSize {
		return RecordId{}, fmt.Errorf("relation: record is %d bytes, want %d", len(data), r.recordSize)
	}

	idx := r.count
	if _, err := r.file.WriteAt(data, idx*int64(r.recordSize)); err != nil {
		return RecordId{}, err
	}
	r.count++
	return r.ridForIndex(idx), nil
}

func (r *Relation) ridForIndex(idx int64) RecordId {
	return RecordId{
		PageNum: int32(idx / int64(r.rowsPerPage)),
		SlotNum: int32(idx % int64(r.rowsPerPage)),
	}
}

// RecordSize is the fixed row width this relation was opened with.
func (r *Relation) RecordSize() int32 { return r.recordSize }

func (r *Relation) Close() error { return r.file.Close() }

// Scan is a forward-only cursor over every record in a Relation, visited
// in insertion order. It reports exhaustion as ErrEndOfFile so a caller
// like a bulk build can terminate its loop on that specific condition.
type Scan struct {
	rel  *Relation
	next int64
	cur  []byte
}

// NewScan starts a fresh scan of rel from its first record.
func (r *Relation) NewScan() *Scan {
	return &Scan{rel: r, cur: make([]byte, r.recordSize)}
}

// ScanNext advances to the next record and returns its RecordId. Once the
// relation is exhausted it returns ErrEndOfFile.
func (s *Scan) ScanNext() (RecordId, error) {
	if s.next >= s.rel.count {
		return RecordId{}, ErrEndOfFile
	}

	idx := s.next
	if _, err := s.rel.file.ReadAt(s.cur, idx*int64(s.rel.recordSize)); err != nil && err != io.EOF {
		return RecordId{}, err
	}
	s.next++
	return s.rel.ridForIndex(idx), nil
}

// GetRecord returns the bytes of the record ScanNext last returned.
func (s *Scan) GetRecord() []byte {
	return s.cur
}
