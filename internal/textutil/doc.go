// Package textutil holds small string helpers used when naming book files and
// when cleaning up text-processing output for parsing or display.
package textutil
