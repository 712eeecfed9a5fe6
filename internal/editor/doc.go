// Package editor implements the working copy behind the chapter list view:
// render, edit, add, delete and snapshot, with contiguous indices and an
// empty-state marker.
package editor
