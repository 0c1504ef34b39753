package btreeindex

import (
	"bptreeidx/disk/pages"
	"bptreeidx/relation"
)

// CompareOp bounds a range scan. Lower bounds use GT/GTE, upper bounds use
// LT/LTE; any other combination is ErrBadOpcodes.
type CompareOp int

const (
	GT CompareOp = iota
	GTE
	LT
	LTE
)

// scanState is the active range scan on an Index, if any. Only one scan
// may be active at a time.
type scanState struct {
	active  bool
	lowVal  int32
	lowOp   CompareOp
	highVal int32
	highOp  CompareOp

	leafPage *pages.RawPage
	nextIdx  int
}

func (s *scanState) lowSatisfied(k int32) bool {
	if s.lowOp == GT {
		return k > s.lowVal
	}
	return k >= s.lowVal
}

func (s *scanState) highSatisfied(k int32) bool {
	if s.highOp == LT {
		return k < s.highVal
	}
	return k <= s.highVal
}

// StartScan begins a range scan over (lowVal lowOp key) && (key highOp
// highVal). If a scan is already active it is ended first. The leaf
// holding the first matching entry, if any, is left pinned until EndScan.
func (idx *Index) StartScan(lowVal int32, lowOp CompareOp, highVal int32, highOp CompareOp) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanRange
	}

	if idx.scan.active {
		if err := idx.EndScan(); err != nil {
			return err
		}
	}

	page, err := idx.pool.ReadPage(idx.rootPageNum)
	if err != nil {
		return err
	}
	n := readInternal(page.GetData())

	for n.Level != 1 {
		i := childIndexFor(n, lowVal)
		childPid := n.Children[i]
		if err := idx.pool.UnpinPage(page.GetPageId(), false); err != nil {
			return err
		}
		page, err = idx.pool.ReadPage(childPid)
		if err != nil {
			return err
		}
		n = readInternal(page.GetData())
	}

	i := childIndexFor(n, lowVal)
	leafPid := n.Children[i]
	if err := idx.pool.UnpinPage(page.GetPageId(), false); err != nil {
		return err
	}

	leafPage, err := idx.pool.ReadPage(leafPid)
	if err != nil {
		return err
	}
	leaf := readLeaf(leafPage.GetData())

	s := &idx.scan
	s.lowVal, s.lowOp, s.highVal, s.highOp = lowVal, lowOp, highVal, highOp

	for {
		found := -1
		for j := 0; j < int(leaf.Count); j++ {
			if s.lowSatisfied(leaf.Keys[j]) {
				found = j
				break
			}
		}
		if found >= 0 {
			s.leafPage = leafPage
			s.nextIdx = found
			s.active = true
			return nil
		}

		if leaf.RightSib == 0 {
			if err := idx.pool.UnpinPage(leafPage.GetPageId(), false); err != nil {
				return err
			}
			return ErrNoSuchKeyFound
		}

		nextPid := leaf.RightSib
		if err := idx.pool.UnpinPage(leafPage.GetPageId(), false); err != nil {
			return err
		}
		leafPage, err = idx.pool.ReadPage(nextPid)
		if err != nil {
			return err
		}
		leaf = readLeaf(leafPage.GetData())
	}
}

// ScanNext returns the next matching record id. Once the scan runs past
// the high bound or off the end of the leaf chain it returns
// ErrIndexScanCompleted on every subsequent call; the scan stays active
// and its leaf stays pinned until EndScan is called.
func (idx *Index) ScanNext() (relation.RecordId, error) {
	s := &idx.scan
	if !s.active {
		return relation.RecordId{}, ErrScanNotInitialized
	}

	leaf := readLeaf(s.leafPage.GetData())

	for s.nextIdx >= int(leaf.Count) {
		if leaf.RightSib == 0 {
			return relation.RecordId{}, ErrIndexScanCompleted
		}

		nextPid := leaf.RightSib
		oldPid := s.leafPage.GetPageId()
		nextPage, err := idx.pool.ReadPage(nextPid)
		if err != nil {
			return relation.RecordId{}, err
		}
		if err := idx.pool.UnpinPage(oldPid, false); err != nil {
			return relation.RecordId{}, err
		}
		s.leafPage = nextPage
		s.nextIdx = 0
		leaf = readLeaf(s.leafPage.GetData())
	}

	k := leaf.Keys[s.nextIdx]
	if !s.highSatisfied(k) {
		return relation.RecordId{}, ErrIndexScanCompleted
	}

	rid := leaf.Rids[s.nextIdx]
	s.nextIdx++
	return rid, nil
}

// EndScan releases the active scan's pinned leaf. It is an error to call
// EndScan without an active scan.
func (idx *Index) EndScan() error {
	s := &idx.scan
	if !s.active {
		return ErrScanNotInitialized
	}
	if err := idx.pool.UnpinPage(s.leafPage.GetPageId(), false); err != nil {
		return err
	}
	s.leafPage = nil
	s.active = false
	return nil
}
