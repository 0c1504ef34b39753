// Package buffer is the page-cache layer between btreeindex and the
// paged file: a fixed number of frames, pin counts, and a clock-sweep
// replacer that picks a victim when every frame is busy.
package buffer

import (
	"fmt"
	"sync"

	"bptreeidx/disk"
	"bptreeidx/disk/pages"
)

// Pool is the buffer-pool contract btreeindex consumes: pin-on-read/alloc,
// unpin-with-dirty-bit, and a file-wide flush.
type Pool interface {
	ReadPage(pid disk.PageID) (*pages.RawPage, error)
	AllocPage() (disk.PageID, *pages.RawPage, error)
	UnpinPage(pid disk.PageID, isDirty bool) error
	FlushFile() error
}

type frame struct {
	page *pages.RawPage
}

var _ Pool = &BufferPool{}

// BufferPool is the default Pool implementation: a fixed-size frame array,
// a page table, and a ClockReplacer for eviction. There is no write-ahead
// log and no free list here — pages backing this pool are never deleted or
// reclaimed, and this pool makes no crash-recovery guarantees.
type BufferPool struct {
	frames      []*frame
	pageTable   map[disk.PageID]int
	emptyFrames []int
	replacer    IReplacer
	disk        disk.IDiskManager
	mu          sync.Mutex
}

// NewBufferPool wraps dm with poolSize frames.
func NewBufferPool(dm disk.IDiskManager, poolSize int) *BufferPool {
	emptyFrames := make([]int, poolSize)
	for i := range emptyFrames {
		emptyFrames[i] = i
	}

	return &BufferPool{
		frames:      make([]*frame, poolSize),
		pageTable:   map[disk.PageID]int{},
		emptyFrames: emptyFrames,
		replacer:    NewClockReplacer(poolSize),
		disk:        dm,
	}
}

// ReadPage pins and returns pid's page, reading it from disk if it is not
// already resident.
func (b *BufferPool) ReadPage(pid disk.PageID) (*pages.RawPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frameIdx, ok := b.pageTable[pid]; ok {
		b.pin(frameIdx)
		return b.frames[frameIdx].page, nil
	}

	frameIdx, err := b.frameFor(pid)
	if err != nil {
		return nil, err
	}

	data, err := b.disk.ReadPage(pid)
	if err != nil {
		b.unReserve(frameIdx)
		return nil, fmt.Errorf("buffer: read page %d: %w", pid, err)
	}

	p := b.frames[frameIdx].page
	copy(p.GetData(), data)
	b.pageTable[pid] = frameIdx
	b.pin(frameIdx)
	return p, nil
}

// AllocPage allocates a brand new page, pinned and zeroed, and gives it a
// frame without reading anything from disk.
func (b *BufferPool) AllocPage() (disk.PageID, *pages.RawPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pid := b.disk.AllocatePage()

	frameIdx, err := b.frameFor(pid)
	if err != nil {
		return 0, nil, err
	}

	p := b.frames[frameIdx].page
	b.pageTable[pid] = frameIdx
	b.pin(frameIdx)
	p.SetDirty()
	return pid, p, nil
}

// frameFor returns an empty or evicted frame index for pid. The caller is
// responsible for setting b.pageTable[pid] = idx once it has filled the
// frame's content. Caller holds b.mu.
func (b *BufferPool) frameFor(pid disk.PageID) (int, error) {
	if len(b.emptyFrames) > 0 {
		idx := b.emptyFrames[len(b.emptyFrames)-1]
		b.emptyFrames = b.emptyFrames[:len(b.emptyFrames)-1]
		if b.frames[idx] == nil {
			b.frames[idx] = &frame{page: pages.NewRawPage(pid)}
		} else {
			b.frames[idx].page.Reset(pid)
		}
		return idx, nil
	}

	victimIdx, err := b.replacer.ChooseVictim()
	if err != nil {
		return 0, fmt.Errorf("buffer: no free frame to hold page %d: %w", pid, err)
	}

	victim := b.frames[victimIdx]
	if victim.page.IsDirty() {
		if err := b.disk.WritePage(victim.page.GetPageId(), victim.page.GetData()); err != nil {
			return 0, fmt.Errorf("buffer: evicting page %d: %w", victim.page.GetPageId(), err)
		}
	}

	delete(b.pageTable, victim.page.GetPageId())
	victim.page.Reset(pid)
	return victimIdx, nil
}

func (b *BufferPool) unReserve(frameIdx int) {
	delete(b.pageTable, b.frames[frameIdx].page.GetPageId())
	b.emptyFrames = append(b.emptyFrames, frameIdx)
}

func (b *BufferPool) pin(frameIdx int) {
	b.frames[frameIdx].page.IncrPinCount()
	b.replacer.Pin(frameIdx)
}

// UnpinPage decrements pid's pin count and, once it reaches zero, makes the
// frame eligible for eviction again.
func (b *BufferPool) UnpinPage(pid disk.PageID, isDirty bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameIdx, ok := b.pageTable[pid]
	if !ok {
		return fmt.Errorf("buffer: unpin called on page %d which is not in the pool", pid)
	}

	fr := b.frames[frameIdx]
	if isDirty {
		fr.page.SetDirty()
	}

	if fr.page.GetPinCount() <= 0 {
		panic(fmt.Sprintf("buffer: unpin called while pin count is <= 0, page id %d", pid))
	}

	fr.page.DecrPinCount()
	if fr.page.GetPinCount() == 0 {
		b.replacer.Unpin(frameIdx)
	}
	return nil
}

// PinnedFrames reports how many frames currently have at least one active
// pin. Exposed for tests that assert on pin discipline; not part of Pool.
func (b *BufferPool) PinnedFrames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replacer.NumPinnedPages()
}

// FlushFile writes every dirty resident page to disk and fsyncs the file.
func (b *BufferPool) FlushFile() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for pid, frameIdx := range b.pageTable {
		p := b.frames[frameIdx].page
		if !p.IsDirty() {
			continue
		}
		if err := b.disk.WritePage(pid, p.GetData()); err != nil {
			return fmt.Errorf("buffer: flushing page %d: %w", pid, err)
		}
		p.SetClean()
	}

	return b.disk.Flush()
}
