// Package common holds small helpers used by btreeindex that don't belong
// to any more specific package.
package common

// PanicIfErr panics on err. Used at call sites where the surrounding
// operation has no sensible way to propagate the error further, such as
// a codec failing against a buffer it sized itself.
func PanicIfErr(err error) {
	if err != nil {
		panic(err)
	}
}
