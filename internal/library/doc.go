// Package library stores saved books as JSON chapter arrays, one file per
// book, under a single directory.
package library
