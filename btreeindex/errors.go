package btreeindex

import "errors"

// Sentinel errors surfaced by the index's public operations. These replace
// the exception hierarchy of the system this index was modeled on with
// plain Go error values.
var (
	// ErrBadOpcodes is returned by StartScan when lowOp or highOp is not
	// one of the operators that bound is allowed to use.
	ErrBadOpcodes = errors.New("btreeindex: bad scan operator")

	// ErrBadScanRange is returned by StartScan when lowVal is greater
	// than highVal.
	ErrBadScanRange = errors.New("btreeindex: low bound is greater than high bound")

	// ErrNoSuchKeyFound is returned by StartScan when no key in the
	// index satisfies the lower bound. The upper bound is not checked
	// there: if keys pass the lower bound but not the upper one, StartScan
	// succeeds and the first ScanNext returns ErrIndexScanCompleted.
	ErrNoSuchKeyFound = errors.New("btreeindex: no key satisfies the scan range")

	// ErrScanNotInitialized is returned by ScanNext and EndScan when
	// called without an active scan.
	ErrScanNotInitialized = errors.New("btreeindex: scan not initialized")

	// ErrIndexScanCompleted is returned by ScanNext once the scan has
	// exhausted the leaf chain or passed the high bound. The scan stays
	// active; EndScan must still be called to release its pinned leaf.
	ErrIndexScanCompleted = errors.New("btreeindex: scan has no more entries")

	// ErrBadIndexInfo is returned by Open when an existing index file's
	// meta page does not match the relation name or attribute offset the
	// caller asked to open.
	ErrBadIndexInfo = errors.New("btreeindex: index file does not match requested relation/attribute")
)
