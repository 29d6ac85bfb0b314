// Package statefile provides the JSON state files kept next to the sync:
// the run watermark and the per-store local stock document.
package statefile
