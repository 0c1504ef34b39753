package btreeindex

import (
	"sort"

	"bptreeidx/disk"
	"bptreeidx/relation"
)

// childIndexFor implements the child-selection rule: the smallest i with
// key <= Keys[i], or Count if no such i exists.
func childIndexFor(n internalLayout, key int32) int {
	count := int(n.Count)
	return sort.Search(count, func(i int) bool { return n.Keys[i] >= key })
}

// leafInsertIndex returns the position a new key belongs at among n's live
// entries: the first index whose key is strictly greater, so entries equal
// to key stay ahead of the one being inserted.
func leafInsertIndex(n leafLayout, key int32) int {
	count := int(n.Count)
	return sort.Search(count, func(i int) bool { return n.Keys[i] > key })
}

// leafInsertAt inserts (key, rid) at position i of a non-full leaf,
// shifting later entries right by one.
func leafInsertAt(n *leafLayout, i int, key int32, rid relation.RecordId) {
	count := int(n.Count)
	copy(n.Keys[i+1:count+1], n.Keys[i:count])
	copy(n.Rids[i+1:count+1], n.Rids[i:count])
	n.Keys[i] = key
	n.Rids[i] = rid
	n.Count++
}

// splitLeaf handles an insert into an already-full leaf: old is mutated in
// place to hold the left half of the merged L+1 entries, and the right half
// is returned along with the promoted separator (the right half's first
// key). The returned right half inherits old's original RightSib, and
// old's RightSib is reset to zero; the caller sets it to the new page's id
// once that id is known.
func splitLeaf(old *leafLayout, key int32, rid relation.RecordId) (right leafLayout, sepKey int32) {
	var allKeys [LeafFanout + 1]int32
	var allRids [LeafFanout + 1]relation.RecordId

	i := leafInsertIndex(*old, key)
	copy(allKeys[:i], old.Keys[:i])
	copy(allRids[:i], old.Rids[:i])
	allKeys[i] = key
	allRids[i] = rid
	copy(allKeys[i+1:], old.Keys[i:LeafFanout])
	copy(allRids[i+1:], old.Rids[i:LeafFanout])

	m := (LeafFanout + 2) / 2 // ceil((L+1)/2)
	originalRightSib := old.RightSib

	var newOld leafLayout
	newOld.Count = int32(m)
	copy(newOld.Keys[:m], allKeys[:m])
	copy(newOld.Rids[:m], allRids[:m])

	rightCount := LeafFanout + 1 - m
	right.Count = int32(rightCount)
	copy(right.Keys[:rightCount], allKeys[m:])
	copy(right.Rids[:rightCount], allRids[m:])
	right.RightSib = originalRightSib

	*old = newOld
	return right, allKeys[m]
}

// internalInsertIndex returns the position a new separator key belongs at
// among n's live keys, using the same rule as leafInsertIndex.
func internalInsertIndex(n internalLayout, sepKey int32) int {
	count := int(n.Count)
	return sort.Search(count, func(i int) bool { return n.Keys[i] > sepKey })
}

// internalInsertAt inserts a promoted (sepKey, rightChild) pair at position
// i of a non-full internal node, shifting later keys and child pointers
// right by one.
func internalInsertAt(n *internalLayout, i int, sepKey int32, rightChild disk.PageID) {
	count := int(n.Count)
	copy(n.Keys[i+1:count+1], n.Keys[i:count])
	copy(n.Children[i+2:count+2], n.Children[i+1:count+1])
	n.Keys[i] = sepKey
	n.Children[i+1] = rightChild
	n.Count++
}

// splitInternal handles a promoted insert into an already-full internal
// node. old is mutated to hold the left half of the merged F keys / F+1
// child pointers; the right half is returned along with the key lifted out
// of both (the new separator one level up).
func splitInternal(old *internalLayout, sepKey int32, rightChild disk.PageID) (right internalLayout, liftedKey int32) {
	const F = InternalFanout

	var allKeys [F]int32
	var allChildren [F + 1]disk.PageID

	i := internalInsertIndex(*old, sepKey)
	copy(allKeys[:i], old.Keys[:i])
	copy(allChildren[:i+1], old.Children[:i+1])
	allKeys[i] = sepKey
	allChildren[i+1] = rightChild
	copy(allKeys[i+1:], old.Keys[i:F-1])
	copy(allChildren[i+2:], old.Children[i+1:F])

	m := F / 2
	liftedKey = allKeys[m]

	var newOld internalLayout
	newOld.Level = old.Level
	newOld.Count = int32(m)
	copy(newOld.Keys[:m], allKeys[:m])
	copy(newOld.Children[:m+1], allChildren[:m+1])

	right.Level = old.Level
	rightCount := F - 1 - m
	right.Count = int32(rightCount)
	copy(right.Keys[:rightCount], allKeys[m+1:])
	copy(right.Children[:rightCount+1], allChildren[m+1:])

	*old = newOld
	return right, liftedKey
}
