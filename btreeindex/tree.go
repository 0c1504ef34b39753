package btreeindex

import (
	"fmt"

	"bptreeidx/disk"
	"bptreeidx/disk/pages"
	"bptreeidx/relation"
)

// promotedEntry carries a separator key and the page id of a new right
// sibling one level up the recursion, once a child below has split.
type promotedEntry struct {
	key   int32
	right disk.PageID
}

// InsertEntry inserts key with its record id into the index, descending
// from the root and splitting nodes along the way as needed.
//
// The root stays pinned for the index's entire lifetime (acquired once by
// Open and handed off across promotions); this call takes out a second,
// purely local pin on it for the duration of the descent and releases that
// one before returning, leaving the permanent pin untouched.
func (idx *Index) InsertEntry(key int32, rid relation.RecordId) error {
	rootPage, err := idx.pool.ReadPage(idx.rootPageNum)
	if err != nil {
		return fmt.Errorf("btreeindex: read root: %w", err)
	}

	p, err := idx.insertInternal(rootPage, key, rid)
	if err != nil {
		return err
	}
	if p != nil {
		if err := idx.promoteRoot(*p); err != nil {
			return err
		}
	}
	return nil
}

// insertInternal inserts into the subtree rooted at page, which the caller
// guarantees is an internal node. It returns a non-nil promotedEntry if
// page itself had to split.
//
// pid is unpinned exactly once no matter which path below is taken,
// including every error return: the defer is the only place that calls
// UnpinPage on it, and dirty records whether page.GetData() was changed
// before that happens.
func (idx *Index) insertInternal(page *pages.RawPage, key int32, rid relation.RecordId) (promoted *promotedEntry, err error) {
	pid := page.GetPageId()
	dirty := false
	defer func() {
		if unpinErr := idx.pool.UnpinPage(pid, dirty); unpinErr != nil && err == nil {
			err = unpinErr
		}
	}()

	n := readInternal(page.GetData())

	childIdx := childIndexFor(n, key)
	childPid := n.Children[childIdx]

	childPage, readErr := idx.pool.ReadPage(childPid)
	if readErr != nil {
		return nil, fmt.Errorf("btreeindex: read child %d: %w", childPid, readErr)
	}

	var childPromoted *promotedEntry
	if n.Level == 1 {
		childPromoted, err = idx.insertLeaf(childPage, key, rid)
	} else {
		childPromoted, err = idx.insertInternal(childPage, key, rid)
	}
	if err != nil {
		return nil, err
	}

	if childPromoted == nil {
		return nil, nil
	}

	if int(n.Count) < InternalFanout-1 {
		i := internalInsertIndex(n, childPromoted.key)
		internalInsertAt(&n, i, childPromoted.key, childPromoted.right)
		writeInternal(page.GetData(), n)
		dirty = true
		return nil, nil
	}

	right, liftedKey := splitInternal(&n, childPromoted.key, childPromoted.right)
	writeInternal(page.GetData(), n)
	dirty = true

	rightPid, rightPage, allocErr := idx.pool.AllocPage()
	if allocErr != nil {
		return nil, allocErr
	}
	writeInternal(rightPage.GetData(), right)

	if unpinErr := idx.pool.UnpinPage(rightPid, true); unpinErr != nil {
		return nil, unpinErr
	}

	return &promotedEntry{key: liftedKey, right: rightPid}, nil
}

// insertLeaf inserts into leaf page. It returns a non-nil promotedEntry if
// the leaf had to split. Like insertInternal, pid is unpinned exactly once,
// via the same defer pattern, on every path including error returns.
func (idx *Index) insertLeaf(page *pages.RawPage, key int32, rid relation.RecordId) (promoted *promotedEntry, err error) {
	pid := page.GetPageId()
	dirty := false
	defer func() {
		if unpinErr := idx.pool.UnpinPage(pid, dirty); unpinErr != nil && err == nil {
			err = unpinErr
		}
	}()

	n := readLeaf(page.GetData())

	if int(n.Count) < LeafFanout {
		i := leafInsertIndex(n, key)
		leafInsertAt(&n, i, key, rid)
		writeLeaf(page.GetData(), n)
		dirty = true
		return nil, nil
	}

	right, sepKey := splitLeaf(&n, key, rid)

	rightPid, rightPage, allocErr := idx.pool.AllocPage()
	if allocErr != nil {
		return nil, allocErr
	}
	n.RightSib = rightPid
	writeLeaf(page.GetData(), n)
	dirty = true
	writeLeaf(rightPage.GetData(), right)

	if unpinErr := idx.pool.UnpinPage(rightPid, true); unpinErr != nil {
		return nil, unpinErr
	}

	return &promotedEntry{key: sepKey, right: rightPid}, nil
}

// promoteRoot handles the case where the root itself split: it allocates a
// new internal root one level higher, pointing at the old root and its new
// sibling, and rewrites the meta page to record it. The old root's
// permanent pin is dropped here; the new root's AllocPage pin is kept
// forever, becoming its permanent pin.
func (idx *Index) promoteRoot(p promotedEntry) error {
	oldRootPid := idx.rootPageNum

	oldRootPage, err := idx.pool.ReadPage(oldRootPid)
	if err != nil {
		return err
	}
	oldRoot := readInternal(oldRootPage.GetData())
	if err := idx.pool.UnpinPage(oldRootPid, false); err != nil {
		return err
	}

	newRootPid, newRootPage, err := idx.pool.AllocPage()
	if err != nil {
		return err
	}

	var newRoot internalLayout
	newRoot.Level = oldRoot.Level + 1
	newRoot.Count = 1
	newRoot.Keys[0] = p.key
	newRoot.Children[0] = oldRootPid
	newRoot.Children[1] = p.right
	writeInternal(newRootPage.GetData(), newRoot)

	metaPg, err := idx.pool.ReadPage(MetaPID)
	if err != nil {
		return err
	}
	m := readMetaPage(metaPg.GetData())
	m.RootPageNo = newRootPid
	writeMetaPage(metaPg.GetData(), m)
	if err := idx.pool.UnpinPage(MetaPID, true); err != nil {
		return err
	}

	if err := idx.pool.UnpinPage(oldRootPid, false); err != nil {
		return err
	}

	idx.rootPageNum = newRootPid
	return nil
}
