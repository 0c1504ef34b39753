// Package pages is the in-memory representation of a pinned page: a raw
// PAGE_SIZE byte buffer plus the bookkeeping the buffer pool needs (pin
// count, dirty bit, a latch for callers that share a pool across
// goroutines).
package pages

import (
	"sync"

	"bptreeidx/disk"
)

// IPage is the view the buffer pool and the btreeindex codec share of a
// pinned page.
type IPage interface {
	GetData() []byte

	GetPageId() disk.PageID
	GetPinCount() int
	IsDirty() bool
	SetDirty()
	SetClean()
	WLatch()
	WUnlatch()
	RLatch()
	RUnLatch()
	IncrPinCount()
	DecrPinCount()
}

var _ IPage = &RawPage{}

// RawPage wraps a fixed disk.PageSize buffer. btreeindex never looks past
// this type: it reinterprets Data as a meta page, an internal node, or a
// leaf node depending on context, per the page codec.
type RawPage struct {
	pageId   disk.PageID
	isDirty  bool
	rwLatch  sync.RWMutex
	PinCount int
	Data     []byte
}

// NewRawPage allocates a zeroed page buffer for pageId.
func NewRawPage(pageId disk.PageID) *RawPage {
	return &RawPage{
		pageId:   pageId,
		isDirty:  false,
		rwLatch:  sync.RWMutex{},
		PinCount: 0,
		Data:     make([]byte, disk.PageSize, disk.PageSize),
	}
}

func (p *RawPage) IncrPinCount() {
	p.PinCount++
}

func (p *RawPage) DecrPinCount() {
	p.PinCount--
}

func (p *RawPage) GetData() []byte {
	return p.Data
}

func (p *RawPage) GetPageId() disk.PageID {
	return p.pageId
}

func (p *RawPage) GetPinCount() int {
	return p.PinCount
}

func (p *RawPage) IsDirty() bool {
	return p.isDirty
}

func (p *RawPage) SetDirty() {
	p.isDirty = true
}

func (p *RawPage) SetClean() {
	p.isDirty = false
}

func (p *RawPage) WLatch() {
	p.rwLatch.Lock()
}

func (p *RawPage) WUnlatch() {
	p.rwLatch.Unlock()
}

func (p *RawPage) RLatch() {
	p.rwLatch.RLock()
}

func (p *RawPage) RUnLatch() {
	p.rwLatch.RUnlock()
}

// Reset re-homes the frame to a different physical page after eviction,
// wiping stale content and bookkeeping.
func (p *RawPage) Reset(pageId disk.PageID) {
	p.pageId = pageId
	for i := range p.Data {
		p.Data[i] = 0
	}
	p.PinCount = 0
	p.isDirty = false
}
