// Package tui is the terminal front-end: paste text, wait for it to be
// split into chapters, then review and edit the chapter list and write it
// to the local document.
package tui
