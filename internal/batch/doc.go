// Package batch runs the concurrent decode engine: a shared Queue of work
// items drained by a fixed pool of workers, each of which resolves an item
// to pixels, decodes it and reports one JSON record per code.
package batch
